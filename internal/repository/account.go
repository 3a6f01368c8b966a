package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository создает репозиторий счетов.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, name, kind, currency, balance_cents, is_archived, created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account

	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.Kind, &account.Currency,
		&account.BalanceCents, &account.IsArchived, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account, ErrNotFound
		}
		return account, err
	}

	return account, nil
}

// Create создает счет.
func (r *AccountRepository) Create(ctx context.Context, userID uuid.UUID, name string, kind models.AccountKind, currency string, balanceCents int64) (models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`INSERT INTO accounts (user_id, name, kind, currency, balance_cents)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+accountColumns,
		userID, name, kind, currency, balanceCents,
	))
}

// GetByID возвращает счет пользователя по идентификатору.
func (r *AccountRepository) GetByID(ctx context.Context, userID, accountID uuid.UUID) (models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	))
}

// ListByUser возвращает счета пользователя, архивные последними.
func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE user_id = $1
		 ORDER BY is_archived, created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// Update обновляет имя, тип и валюту счета.
func (r *AccountRepository) Update(ctx context.Context, userID, accountID uuid.UUID, name string, kind models.AccountKind, currency string) (models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`UPDATE accounts
		 SET name = $3, kind = $4, currency = $5, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+accountColumns,
		accountID, userID, name, kind, currency,
	))
}

// SetArchived помечает счет архивным или возвращает из архива.
func (r *AccountRepository) SetArchived(ctx context.Context, userID, accountID uuid.UUID, archived bool) (models.Account, error) {
	return scanAccount(r.db.QueryRow(ctx,
		`UPDATE accounts
		 SET is_archived = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+accountColumns,
		accountID, userID, archived,
	))
}

// AdjustBalance меняет баланс счета на дельту под блокировкой строки.
func (r *AccountRepository) AdjustBalance(ctx context.Context, userID, accountID uuid.UUID, deltaCents int64) (models.Account, error) {
	var account models.Account

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return account, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current int64
	err = tx.QueryRow(ctx,
		`SELECT balance_cents
		 FROM accounts
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE`,
		accountID, userID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account, ErrNotFound
		}
		return account, err
	}

	account, err = scanAccount(tx.QueryRow(ctx,
		`UPDATE accounts
		 SET balance_cents = balance_cents + $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+accountColumns,
		accountID, userID, deltaCents,
	))
	if err != nil {
		return account, err
	}

	return account, tx.Commit(ctx)
}

// Delete удаляет счет.
func (r *AccountRepository) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM accounts
		 WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
