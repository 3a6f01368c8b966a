package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/allocation"
	"example.com/household-finance/internal/models"
)

type IncomeRepository struct {
	db *pgxpool.Pool
}

// IncomeWithDistributions объединяет доход с распределениями и производным
// остатком на бюджет. RemainingCents пересчитывается при каждом чтении.
type IncomeWithDistributions struct {
	Income         models.Income
	Distributions  []models.IncomeDistribution
	RemainingCents int64
}

// NewIncomeRepository создает репозиторий доходов.
func NewIncomeRepository(db *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// Create создает доход и плановые распределения по активным фондам
// в одной транзакции. План считается правилами фондов на момент создания.
func (r *IncomeRepository) Create(ctx context.Context, userID uuid.UUID, source string, amountCents int64, currency string, receivedOn time.Time) (IncomeWithDistributions, error) {
	var result IncomeWithDistributions

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	funds, err := activeFundsForUpdate(ctx, tx, userID)
	if err != nil {
		return result, err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO incomes (user_id, source, amount_cents, currency, received_on)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, source, amount_cents, currency, received_on, created_at`,
		userID, source, amountCents, currency, receivedOn,
	).Scan(&result.Income.ID, &result.Income.UserID, &result.Income.Source, &result.Income.AmountCents,
		&result.Income.Currency, &result.Income.ReceivedOn, &result.Income.CreatedAt)
	if err != nil {
		return result, err
	}

	planned := allocation.Plan(amountCents, funds)
	result.Distributions = make([]models.IncomeDistribution, 0, len(planned))

	for _, p := range planned {
		var d models.IncomeDistribution

		err = tx.QueryRow(ctx,
			`INSERT INTO income_distributions (income_id, fund_id, planned_cents)
			 VALUES ($1, $2, $3)
			 RETURNING id, income_id, fund_id, planned_cents, actual_cents, is_completed, created_at, updated_at`,
			result.Income.ID, p.FundID, p.PlannedCents,
		).Scan(&d.ID, &d.IncomeID, &d.FundID, &d.PlannedCents, &d.ActualCents, &d.IsCompleted, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return result, err
		}

		result.Distributions = append(result.Distributions, d)
	}

	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	result.RemainingCents = allocation.Remaining(amountCents, result.Distributions)
	return result, nil
}

// GetByID возвращает доход пользователя с распределениями.
func (r *IncomeRepository) GetByID(ctx context.Context, userID, incomeID uuid.UUID) (IncomeWithDistributions, error) {
	var result IncomeWithDistributions

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, source, amount_cents, currency, received_on, created_at
		 FROM incomes
		 WHERE id = $1 AND user_id = $2`,
		incomeID, userID,
	).Scan(&result.Income.ID, &result.Income.UserID, &result.Income.Source, &result.Income.AmountCents,
		&result.Income.Currency, &result.Income.ReceivedOn, &result.Income.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, ErrNotFound
		}
		return result, err
	}

	distributions, err := r.listDistributions(ctx, []uuid.UUID{incomeID})
	if err != nil {
		return result, err
	}

	result.Distributions = distributions[incomeID]
	result.RemainingCents = allocation.Remaining(result.Income.AmountCents, result.Distributions)
	return result, nil
}

// ListByUser возвращает доходы пользователя, новые первыми.
func (r *IncomeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]IncomeWithDistributions, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, source, amount_cents, currency, received_on, created_at
		 FROM incomes
		 WHERE user_id = $1
		 ORDER BY received_on DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]IncomeWithDistributions, 0)
	incomeIDs := make([]uuid.UUID, 0)

	for rows.Next() {
		var item IncomeWithDistributions

		err := rows.Scan(&item.Income.ID, &item.Income.UserID, &item.Income.Source, &item.Income.AmountCents,
			&item.Income.Currency, &item.Income.ReceivedOn, &item.Income.CreatedAt)
		if err != nil {
			return nil, err
		}

		incomes = append(incomes, item)
		incomeIDs = append(incomeIDs, item.Income.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	distributions, err := r.listDistributions(ctx, incomeIDs)
	if err != nil {
		return nil, err
	}

	for i := range incomes {
		incomes[i].Distributions = distributions[incomes[i].Income.ID]
		incomes[i].RemainingCents = allocation.Remaining(incomes[i].Income.AmountCents, incomes[i].Distributions)
	}

	return incomes, nil
}

// ConfirmDistribution подтверждает распределение фактической суммой и зачисляет
// ее в баланс фонда. Отрицательный actualCents означает подтверждение плановой
// суммы. Обе записи меняются в одной транзакции: частичное применение никогда
// не наблюдаемо. Повторное подтверждение отклоняется.
func (r *IncomeRepository) ConfirmDistribution(ctx context.Context, userID, incomeID, fundID uuid.UUID, actualCents int64) (IncomeWithDistributions, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return IncomeWithDistributions{}, 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := lockFund(ctx, tx, userID, fundID); err != nil {
		return IncomeWithDistributions{}, 0, err
	}

	distributionID, plannedCents, isCompleted, err := lockDistribution(ctx, tx, userID, incomeID, fundID)
	if err != nil {
		return IncomeWithDistributions{}, 0, err
	}
	if isCompleted {
		return IncomeWithDistributions{}, 0, ErrCompleted
	}

	if actualCents < 0 {
		actualCents = plannedCents
	}

	_, err = tx.Exec(ctx,
		`UPDATE income_distributions
		 SET actual_cents = $2, is_completed = TRUE, updated_at = NOW()
		 WHERE id = $1`,
		distributionID, actualCents,
	)
	if err != nil {
		return IncomeWithDistributions{}, 0, err
	}

	var fundBalance int64
	err = tx.QueryRow(ctx,
		`UPDATE funds
		 SET balance_cents = balance_cents + $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING balance_cents`,
		fundID, userID, actualCents,
	).Scan(&fundBalance)
	if err != nil {
		return IncomeWithDistributions{}, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return IncomeWithDistributions{}, 0, err
	}

	income, err := r.GetByID(ctx, userID, incomeID)
	if err != nil {
		return IncomeWithDistributions{}, 0, err
	}

	return income, fundBalance, nil
}

// UpdateDistribution меняет плановую сумму неподтвержденного распределения.
// Балансы фондов не затрагиваются.
func (r *IncomeRepository) UpdateDistribution(ctx context.Context, userID, incomeID, fundID uuid.UUID, plannedCents int64) (IncomeWithDistributions, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return IncomeWithDistributions{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	distributionID, _, isCompleted, err := lockDistribution(ctx, tx, userID, incomeID, fundID)
	if err != nil {
		return IncomeWithDistributions{}, err
	}
	if isCompleted {
		return IncomeWithDistributions{}, ErrCompleted
	}

	_, err = tx.Exec(ctx,
		`UPDATE income_distributions
		 SET planned_cents = $2, updated_at = NOW()
		 WHERE id = $1`,
		distributionID, plannedCents,
	)
	if err != nil {
		return IncomeWithDistributions{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return IncomeWithDistributions{}, err
	}

	return r.GetByID(ctx, userID, incomeID)
}

// Delete удаляет доход, пока ни одно распределение не подтверждено.
func (r *IncomeRepository) Delete(ctx context.Context, userID, incomeID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var completedCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM income_distributions d
		 JOIN incomes i ON i.id = d.income_id
		 WHERE d.income_id = $1 AND i.user_id = $2 AND d.is_completed`,
		incomeID, userID,
	).Scan(&completedCount)
	if err != nil {
		return err
	}

	if completedCount > 0 {
		return ErrCompleted
	}

	cmd, err := tx.Exec(ctx,
		`DELETE FROM incomes
		 WHERE id = $1 AND user_id = $2`,
		incomeID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *IncomeRepository) listDistributions(ctx context.Context, incomeIDs []uuid.UUID) (map[uuid.UUID][]models.IncomeDistribution, error) {
	result := make(map[uuid.UUID][]models.IncomeDistribution, len(incomeIDs))
	if len(incomeIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, income_id, fund_id, planned_cents, actual_cents, is_completed, created_at, updated_at
		 FROM income_distributions
		 WHERE income_id = ANY($1)
		 ORDER BY created_at`,
		incomeIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d models.IncomeDistribution

		err := rows.Scan(&d.ID, &d.IncomeID, &d.FundID, &d.PlannedCents, &d.ActualCents, &d.IsCompleted, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, err
		}

		result[d.IncomeID] = append(result[d.IncomeID], d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// activeFundsForUpdate блокирует активные фонды пользователя, чтобы правила
// не поменялись между расчетом плана и его записью.
func activeFundsForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]models.Fund, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+fundColumns+`
		 FROM funds
		 WHERE user_id = $1 AND status = 'active' AND deleted_at IS NULL
		 ORDER BY created_at
		 FOR UPDATE`,
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

func lockDistribution(ctx context.Context, tx pgx.Tx, userID, incomeID, fundID uuid.UUID) (uuid.UUID, int64, bool, error) {
	var distributionID uuid.UUID
	var plannedCents int64
	var isCompleted bool

	err := tx.QueryRow(ctx,
		`SELECT d.id, d.planned_cents, d.is_completed
		 FROM income_distributions d
		 JOIN incomes i ON i.id = d.income_id
		 WHERE d.income_id = $1 AND d.fund_id = $2 AND i.user_id = $3
		 FOR UPDATE OF d`,
		incomeID, fundID, userID,
	).Scan(&distributionID, &plannedCents, &isCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, 0, false, ErrNotFound
		}
		return uuid.Nil, 0, false, err
	}

	return distributionID, plannedCents, isCompleted, nil
}
