package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type BudgetRepository struct {
	db *pgxpool.Pool
}

// BudgetWithSpent дополняет бюджет категории фактическими тратами месяца.
// SpentCents выводится из расходов и не хранится.
type BudgetWithSpent struct {
	Budget     models.Budget
	SpentCents int64
}

// NewBudgetRepository создает репозиторий бюджетов.
func NewBudgetRepository(db *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Upsert создает или обновляет лимит категории на месяц.
func (r *BudgetRepository) Upsert(ctx context.Context, userID uuid.UUID, category string, month time.Time, limitCents int64) (models.Budget, error) {
	var budget models.Budget

	err := r.db.QueryRow(ctx,
		`INSERT INTO budgets (user_id, category, month, limit_cents)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, category, month)
		 DO UPDATE SET limit_cents = EXCLUDED.limit_cents, updated_at = NOW()
		 RETURNING id, user_id, category, month, limit_cents, created_at, updated_at`,
		userID, category, monthStart(month), limitCents,
	).Scan(&budget.ID, &budget.UserID, &budget.Category, &budget.Month, &budget.LimitCents, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return budget, err
	}

	return budget, nil
}

// ListByMonth возвращает бюджеты месяца с производными тратами.
func (r *BudgetRepository) ListByMonth(ctx context.Context, userID uuid.UUID, month time.Time) ([]BudgetWithSpent, error) {
	start := monthStart(month)
	end := start.AddDate(0, 1, 0)

	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.user_id, b.category, b.month, b.limit_cents, b.created_at, b.updated_at,
		        COALESCE(SUM(e.amount_cents), 0) AS spent_cents
		 FROM budgets b
		 LEFT JOIN expenses e ON e.user_id = b.user_id
		        AND e.category = b.category
		        AND e.spent_on >= $2 AND e.spent_on < $3
		 WHERE b.user_id = $1 AND b.month = $2
		 GROUP BY b.id, b.user_id, b.category, b.month, b.limit_cents, b.created_at, b.updated_at
		 ORDER BY b.category`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]BudgetWithSpent, 0)
	for rows.Next() {
		var item BudgetWithSpent

		err := rows.Scan(&item.Budget.ID, &item.Budget.UserID, &item.Budget.Category, &item.Budget.Month,
			&item.Budget.LimitCents, &item.Budget.CreatedAt, &item.Budget.UpdatedAt, &item.SpentCents)
		if err != nil {
			return nil, err
		}

		budgets = append(budgets, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return budgets, nil
}

// Delete удаляет бюджет категории.
func (r *BudgetRepository) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM budgets
		 WHERE id = $1 AND user_id = $2`,
		budgetID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// monthStart нормализует дату к первому числу месяца (UTC).
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
