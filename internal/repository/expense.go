package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

type ExpenseInput struct {
	AccountID   *uuid.UUID
	Category    string
	Description string
	AmountCents int64
	Currency    string
	SpentOn     time.Time
}

// ExpenseFilter ограничивает выборку расходов по периоду и категории.
// Нулевые значения означают отсутствие ограничения.
type ExpenseFilter struct {
	From     time.Time
	To       time.Time
	Category string
}

// NewExpenseRepository создает репозиторий расходов.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, user_id, account_id, category, description, amount_cents, currency, spent_on, created_at, updated_at`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var expense models.Expense

	err := row.Scan(&expense.ID, &expense.UserID, &expense.AccountID, &expense.Category, &expense.Description,
		&expense.AmountCents, &expense.Currency, &expense.SpentOn, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense, ErrNotFound
		}
		return expense, err
	}

	return expense, nil
}

// Create создает расход.
func (r *ExpenseRepository) Create(ctx context.Context, userID uuid.UUID, input ExpenseInput) (models.Expense, error) {
	return scanExpense(r.db.QueryRow(ctx,
		`INSERT INTO expenses (user_id, account_id, category, description, amount_cents, currency, spent_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+expenseColumns,
		userID, input.AccountID, input.Category, input.Description, input.AmountCents, input.Currency, input.SpentOn,
	))
}

// CreateBatch создает пакет расходов в одной транзакции. Используется импортом:
// либо записывается весь пакет, либо ничего.
func (r *ExpenseRepository) CreateBatch(ctx context.Context, userID uuid.UUID, inputs []ExpenseInput) ([]models.Expense, error) {
	if len(inputs) == 0 {
		return []models.Expense{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	expenses := make([]models.Expense, 0, len(inputs))
	for _, input := range inputs {
		expense, err := scanExpense(tx.QueryRow(ctx,
			`INSERT INTO expenses (user_id, account_id, category, description, amount_cents, currency, spent_on)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+expenseColumns,
			userID, input.AccountID, input.Category, input.Description, input.AmountCents, input.Currency, input.SpentOn,
		))
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return expenses, nil
}

// GetByID возвращает расход пользователя по идентификатору.
func (r *ExpenseRepository) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (models.Expense, error) {
	return scanExpense(r.db.QueryRow(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses
		 WHERE id = $1 AND user_id = $2`,
		expenseID, userID,
	))
}

// ListByUser возвращает расходы пользователя по фильтру, новые первыми.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter ExpenseFilter) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + `
	 FROM expenses
	 WHERE user_id = $1`
	args := []any{userID}

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND spent_on >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND spent_on <= $` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY spent_on DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// Update обновляет расход.
func (r *ExpenseRepository) Update(ctx context.Context, userID, expenseID uuid.UUID, input ExpenseInput) (models.Expense, error) {
	return scanExpense(r.db.QueryRow(ctx,
		`UPDATE expenses
		 SET account_id = $3,
		     category = $4,
		     description = $5,
		     amount_cents = $6,
		     currency = $7,
		     spent_on = $8,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+expenseColumns,
		expenseID, userID, input.AccountID, input.Category, input.Description, input.AmountCents, input.Currency, input.SpentOn,
	))
}

// Delete удаляет расход.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM expenses
		 WHERE id = $1 AND user_id = $2`,
		expenseID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// FindDuplicates возвращает ключи "дата|сумма" уже существующих расходов
// в заданном периоде. Используется импортом для пометки дублей.
func (r *ExpenseRepository) FindDuplicates(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT spent_on, amount_cents
		 FROM expenses
		 WHERE user_id = $1 AND spent_on >= $2 AND spent_on <= $3`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var spentOn time.Time
		var amountCents int64

		if err := rows.Scan(&spentOn, &amountCents); err != nil {
			return nil, err
		}

		keys[DuplicateKey(spentOn, amountCents)] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

// DuplicateKey строит ключ дубликата расхода по дате и сумме.
func DuplicateKey(spentOn time.Time, amountCents int64) string {
	return spentOn.Format("2006-01-02") + "|" + strconv.FormatInt(amountCents, 10)
}

