package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

// OverviewStats содержит сводку по состоянию хозяйства: балансы, долги и
// движение денег за текущий месяц.
type OverviewStats struct {
	AccountsCents     int64
	FundsCents        int64
	AssetsCents       int64
	CreditsCents      int64
	NetWorthCents     int64
	MonthIncomeCents  int64
	MonthExpenseCents int64
}

type CategorySpend struct {
	Category   string
	SpentCents int64
}

type MonthlyCashflow struct {
	Month        time.Time
	IncomeCents  int64
	ExpenseCents int64
}

// NewStatsRepository создает репозиторий статистики.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview возвращает сводную статистику пользователя.
func (r *StatsRepository) Overview(ctx context.Context, userID uuid.UUID, now time.Time) (OverviewStats, error) {
	var stats OverviewStats

	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = $1 AND NOT is_archived),
			(SELECT COALESCE(SUM(balance_cents), 0) FROM funds WHERE user_id = $1 AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(value_cents), 0) FROM assets WHERE user_id = $1),
			(SELECT COALESCE(SUM(remaining_cents), 0) FROM credits WHERE user_id = $1)`,
		userID,
	).Scan(&stats.AccountsCents, &stats.FundsCents, &stats.AssetsCents, &stats.CreditsCents)
	if err != nil {
		return stats, err
	}

	start := monthStart(now)
	end := start.AddDate(0, 1, 0)

	err = r.db.QueryRow(ctx,
		`SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM incomes WHERE user_id = $1 AND received_on >= $2 AND received_on < $3),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = $1 AND spent_on >= $2 AND spent_on < $3)`,
		userID, start, end,
	).Scan(&stats.MonthIncomeCents, &stats.MonthExpenseCents)
	if err != nil {
		return stats, err
	}

	// Виртуальные фонды не держат отдельных денег, но их балансы уже входят
	// в счета, поэтому в капитал фонды не прибавляются второй раз.
	stats.NetWorthCents = stats.AccountsCents + stats.AssetsCents - stats.CreditsCents

	return stats, nil
}

// SpendingByCategory возвращает траты месяца по категориям.
func (r *StatsRepository) SpendingByCategory(ctx context.Context, userID uuid.UUID, month time.Time) ([]CategorySpend, error) {
	start := monthStart(month)
	end := start.AddDate(0, 1, 0)

	rows, err := r.db.Query(ctx,
		`SELECT category, COALESCE(SUM(amount_cents), 0) AS spent_cents
		 FROM expenses
		 WHERE user_id = $1 AND spent_on >= $2 AND spent_on < $3
		 GROUP BY category
		 ORDER BY spent_cents DESC`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spending := make([]CategorySpend, 0)
	for rows.Next() {
		var row CategorySpend
		if err := rows.Scan(&row.Category, &row.SpentCents); err != nil {
			return nil, err
		}
		spending = append(spending, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return spending, nil
}

// MonthlyCashflow возвращает приход и расход по месяцам, новые первыми.
func (r *StatsRepository) MonthlyCashflow(ctx context.Context, userID uuid.UUID, months int) ([]MonthlyCashflow, error) {
	if months <= 0 {
		return nil, ErrInvalid
	}

	rows, err := r.db.Query(ctx,
		`WITH incomes_by_month AS (
			SELECT date_trunc('month', received_on)::date AS month,
			       SUM(amount_cents) AS income_cents
			FROM incomes
			WHERE user_id = $1
			GROUP BY month
		), expenses_by_month AS (
			SELECT date_trunc('month', spent_on)::date AS month,
			       SUM(amount_cents) AS expense_cents
			FROM expenses
			WHERE user_id = $1
			GROUP BY month
		)
		SELECT COALESCE(i.month, e.month) AS month,
		       COALESCE(i.income_cents, 0) AS income_cents,
		       COALESCE(e.expense_cents, 0) AS expense_cents
		FROM incomes_by_month i
		FULL OUTER JOIN expenses_by_month e ON e.month = i.month
		ORDER BY month DESC
		LIMIT $2`,
		userID, months,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]MonthlyCashflow, 0)
	for rows.Next() {
		var row MonthlyCashflow
		if err := rows.Scan(&row.Month, &row.IncomeCents, &row.ExpenseCents); err != nil {
			return nil, err
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
