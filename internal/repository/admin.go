package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type UserSummary struct {
	User         models.User
	IncomeCount  int
	ExpenseCount int
	FundCount    int
}

type UsageStats struct {
	TotalUsers    int
	TotalIncomes  int
	TotalExpenses int
	TotalFunds    int
	TotalAccounts int
}

// NewAdminRepository создает репозиторий административных выборок.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает пользователей со счетчиками их записей.
func (r *AdminRepository) ListUsers(ctx context.Context) ([]UserSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.name, u.created_at, u.updated_at,
		        (SELECT COUNT(*) FROM incomes WHERE user_id = u.id) AS income_count,
		        (SELECT COUNT(*) FROM expenses WHERE user_id = u.id) AS expense_count,
		        (SELECT COUNT(*) FROM funds WHERE user_id = u.id AND deleted_at IS NULL) AS fund_count
		 FROM users u
		 ORDER BY u.created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]UserSummary, 0)
	for rows.Next() {
		var summary UserSummary

		err := rows.Scan(&summary.User.ID, &summary.User.Email, &summary.User.Name,
			&summary.User.CreatedAt, &summary.User.UpdatedAt,
			&summary.IncomeCount, &summary.ExpenseCount, &summary.FundCount)
		if err != nil {
			return nil, err
		}

		users = append(users, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// Usage возвращает суммарные счетчики по всей базе.
func (r *AdminRepository) Usage(ctx context.Context) (UsageStats, error) {
	var stats UsageStats

	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM incomes),
			(SELECT COUNT(*) FROM expenses),
			(SELECT COUNT(*) FROM funds WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM accounts)`,
	).Scan(&stats.TotalUsers, &stats.TotalIncomes, &stats.TotalExpenses, &stats.TotalFunds, &stats.TotalAccounts)
	if err != nil {
		return stats, err
	}

	return stats, nil
}
