package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type CreditRepository struct {
	db *pgxpool.Pool
}

type CreditInput struct {
	Lender              string
	PrincipalCents      int64
	RateBps             int
	MonthlyPaymentCents int64
	DueDay              int
}

// NewCreditRepository создает репозиторий кредитов.
func NewCreditRepository(db *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{db: db}
}

const creditColumns = `id, user_id, lender, principal_cents, remaining_cents, rate_bps, monthly_payment_cents, due_day, created_at, updated_at`

func scanCredit(row pgx.Row) (models.Credit, error) {
	var credit models.Credit

	err := row.Scan(&credit.ID, &credit.UserID, &credit.Lender, &credit.PrincipalCents, &credit.RemainingCents,
		&credit.RateBps, &credit.MonthlyPaymentCents, &credit.DueDay, &credit.CreatedAt, &credit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return credit, ErrNotFound
		}
		return credit, err
	}

	return credit, nil
}

// Create создает кредит; остаток равен основному долгу.
func (r *CreditRepository) Create(ctx context.Context, userID uuid.UUID, input CreditInput) (models.Credit, error) {
	return scanCredit(r.db.QueryRow(ctx,
		`INSERT INTO credits (user_id, lender, principal_cents, remaining_cents, rate_bps, monthly_payment_cents, due_day)
		 VALUES ($1, $2, $3, $3, $4, $5, $6)
		 RETURNING `+creditColumns,
		userID, input.Lender, input.PrincipalCents, input.RateBps, input.MonthlyPaymentCents, input.DueDay,
	))
}

// GetByID возвращает кредит пользователя по идентификатору.
func (r *CreditRepository) GetByID(ctx context.Context, userID, creditID uuid.UUID) (models.Credit, error) {
	return scanCredit(r.db.QueryRow(ctx,
		`SELECT `+creditColumns+`
		 FROM credits
		 WHERE id = $1 AND user_id = $2`,
		creditID, userID,
	))
}

// ListByUser возвращает кредиты пользователя.
func (r *CreditRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Credit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+creditColumns+`
		 FROM credits
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credits := make([]models.Credit, 0)
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, credit)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return credits, nil
}

// Update обновляет условия кредита, не трогая остаток.
func (r *CreditRepository) Update(ctx context.Context, userID, creditID uuid.UUID, input CreditInput) (models.Credit, error) {
	return scanCredit(r.db.QueryRow(ctx,
		`UPDATE credits
		 SET lender = $3,
		     principal_cents = $4,
		     rate_bps = $5,
		     monthly_payment_cents = $6,
		     due_day = $7,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+creditColumns,
		creditID, userID, input.Lender, input.PrincipalCents, input.RateBps, input.MonthlyPaymentCents, input.DueDay,
	))
}

// RecordPayment уменьшает остаток долга на сумму платежа под блокировкой
// строки. Платеж больше остатка отклоняется.
func (r *CreditRepository) RecordPayment(ctx context.Context, userID, creditID uuid.UUID, amountCents int64) (models.Credit, error) {
	var credit models.Credit

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return credit, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var remaining int64
	err = tx.QueryRow(ctx,
		`SELECT remaining_cents
		 FROM credits
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE`,
		creditID, userID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return credit, ErrNotFound
		}
		return credit, err
	}

	if amountCents > remaining {
		return credit, ErrInvalid
	}

	credit, err = scanCredit(tx.QueryRow(ctx,
		`UPDATE credits
		 SET remaining_cents = remaining_cents - $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+creditColumns,
		creditID, userID, amountCents,
	))
	if err != nil {
		return credit, err
	}

	return credit, tx.Commit(ctx)
}

// Delete удаляет кредит.
func (r *CreditRepository) Delete(ctx context.Context, userID, creditID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM credits
		 WHERE id = $1 AND user_id = $2`,
		creditID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
