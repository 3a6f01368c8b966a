package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type FundRepository struct {
	db *pgxpool.Pool
}

type FundInput struct {
	Name        string
	Icon        string
	Color       string
	TargetCents *int64
	TargetDate  *time.Time
	RuleType    models.RuleType
	RuleValue   int64
	IsVirtual   bool
	AccountID   *uuid.UUID
}

// NewFundRepository создает репозиторий фондов.
func NewFundRepository(db *pgxpool.Pool) *FundRepository {
	return &FundRepository{db: db}
}

const fundColumns = `id, user_id, name, icon, color, target_cents, target_date, rule_type, rule_value,
	        balance_cents, is_virtual, status, account_id, created_at, updated_at`

func scanFund(row pgx.Row) (models.Fund, error) {
	var fund models.Fund

	err := row.Scan(&fund.ID, &fund.UserID, &fund.Name, &fund.Icon, &fund.Color, &fund.TargetCents,
		&fund.TargetDate, &fund.RuleType, &fund.RuleValue, &fund.BalanceCents, &fund.IsVirtual,
		&fund.Status, &fund.AccountID, &fund.CreatedAt, &fund.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fund, ErrNotFound
		}
		return fund, err
	}

	return fund, nil
}

// Create создает фонд со статусом active.
func (r *FundRepository) Create(ctx context.Context, userID uuid.UUID, input FundInput) (models.Fund, error) {
	return scanFund(r.db.QueryRow(ctx,
		`INSERT INTO funds (user_id, name, icon, color, target_cents, target_date, rule_type, rule_value, is_virtual, account_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+fundColumns,
		userID, input.Name, input.Icon, input.Color, input.TargetCents, input.TargetDate,
		input.RuleType, input.RuleValue, input.IsVirtual, input.AccountID,
	))
}

// GetByID возвращает фонд пользователя по идентификатору.
func (r *FundRepository) GetByID(ctx context.Context, userID, fundID uuid.UUID) (models.Fund, error) {
	return scanFund(r.db.QueryRow(ctx,
		`SELECT `+fundColumns+`
		 FROM funds
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		fundID, userID,
	))
}

// ListByUser возвращает фонды пользователя в порядке создания.
func (r *FundRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Fund, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fundColumns+`
		 FROM funds
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funds := make([]models.Fund, 0)
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return funds, nil
}

// Update обновляет атрибуты фонда. Смена правила влияет только на будущие доходы.
func (r *FundRepository) Update(ctx context.Context, userID, fundID uuid.UUID, input FundInput) (models.Fund, error) {
	return scanFund(r.db.QueryRow(ctx,
		`UPDATE funds
		 SET name = $3,
		     icon = $4,
		     color = $5,
		     target_cents = $6,
		     target_date = $7,
		     rule_type = $8,
		     rule_value = $9,
		     is_virtual = $10,
		     account_id = $11,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 RETURNING `+fundColumns,
		fundID, userID, input.Name, input.Icon, input.Color, input.TargetCents, input.TargetDate,
		input.RuleType, input.RuleValue, input.IsVirtual, input.AccountID,
	))
}

// UpdateStatus меняет жизненный статус фонда.
func (r *FundRepository) UpdateStatus(ctx context.Context, userID, fundID uuid.UUID, status models.FundStatus) (models.Fund, error) {
	return scanFund(r.db.QueryRow(ctx,
		`UPDATE funds
		 SET status = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 RETURNING `+fundColumns,
		fundID, userID, status,
	))
}

// AdjustBalance меняет баланс фонда на дельту под блокировкой строки.
func (r *FundRepository) AdjustBalance(ctx context.Context, userID, fundID uuid.UUID, deltaCents int64) (models.Fund, error) {
	var fund models.Fund

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fund, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	current, err := lockFund(ctx, tx, userID, fundID)
	if err != nil {
		return fund, err
	}
	if current+deltaCents < 0 {
		return fund, ErrInvalid
	}

	fund, err = scanFund(tx.QueryRow(ctx,
		`UPDATE funds
		 SET balance_cents = balance_cents + $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+fundColumns,
		fundID, userID, deltaCents,
	))
	if err != nil {
		return fund, err
	}

	return fund, tx.Commit(ctx)
}

// Delete скрывает фонд. История распределений по прошлым доходам сохраняется.
func (r *FundRepository) Delete(ctx context.Context, userID, fundID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE funds
		 SET deleted_at = NOW(), status = 'paused', updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		fundID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// lockFund блокирует строку фонда до конца транзакции и возвращает текущий баланс.
func lockFund(ctx context.Context, tx pgx.Tx, userID, fundID uuid.UUID) (int64, error) {
	var balanceCents int64

	err := tx.QueryRow(ctx,
		`SELECT balance_cents
		 FROM funds
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		 FOR UPDATE`,
		fundID, userID,
	).Scan(&balanceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return balanceCents, nil
}
