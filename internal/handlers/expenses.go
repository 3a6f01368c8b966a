package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/models"
	"example.com/household-finance/internal/notifications"
	"example.com/household-finance/internal/repository"
)

type ExpenseHandler struct {
	Expenses *repository.ExpenseRepository
	Budgets  *repository.BudgetRepository
	Notifier *notifications.Hub
}

// NewExpenseHandler создает обработчик расходов.
func NewExpenseHandler(expenses *repository.ExpenseRepository, budgets *repository.BudgetRepository, notifier *notifications.Hub) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses, Budgets: budgets, Notifier: notifier}
}

type ExpenseRequest struct {
	AccountID   *string `json:"account_id"`
	Category    string  `json:"category" validate:"required,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	AmountCents int64   `json:"amount_cents" validate:"gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
	SpentOn     string  `json:"spent_on" validate:"required"`
}

// Create записывает расход и проверяет бюджет категории.
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	input, err := bindExpenseInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expense, err := h.Expenses.Create(c.Request().Context(), userID, input)
	if err != nil {
		return serverError(c)
	}

	h.checkBudget(c, userID, expense)
	return c.JSON(http.StatusCreated, expense)
}

// List возвращает расходы по фильтру периода и категории.
func (h *ExpenseHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expenses, err := h.Expenses.ListByUser(c.Request().Context(), userID, filter)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Expense{"expenses": expenses})
}

// Get возвращает расход по идентификатору.
func (h *ExpenseHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	expense, err := h.Expenses.GetByID(c.Request().Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, expense)
}

// Update обновляет расход.
func (h *ExpenseHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	input, err := bindExpenseInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expense, err := h.Expenses.Update(c.Request().Context(), userID, expenseID, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, expense)
}

// Delete удаляет расход.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	if err := h.Expenses.Delete(c.Request().Context(), userID, expenseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// checkBudget публикует уведомление, если расход превысил лимит категории.
// Ошибки проверки не влияют на ответ: расход уже записан.
func (h *ExpenseHandler) checkBudget(c echo.Context, userID uuid.UUID, expense models.Expense) {
	budgets, err := h.Budgets.ListByMonth(c.Request().Context(), userID, expense.SpentOn)
	if err != nil {
		return
	}

	for _, b := range budgets {
		if b.Budget.Category == expense.Category && b.SpentCents > b.Budget.LimitCents {
			h.Notifier.Publish(userID, notifications.BudgetExceeded(b.Budget.Category, b.Budget.LimitCents, b.SpentCents))
			return
		}
	}
}

func bindExpenseInput(c echo.Context) (repository.ExpenseInput, error) {
	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return repository.ExpenseInput{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return repository.ExpenseInput{}, errors.New("validation failed")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		return repository.ExpenseInput{}, errors.New("category is required")
	}

	spentOn, err := parseDate(req.SpentOn)
	if err != nil {
		return repository.ExpenseInput{}, err
	}

	input := repository.ExpenseInput{
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		AmountCents: req.AmountCents,
		Currency:    normalizeCurrency(req.Currency),
		SpentOn:     spentOn,
	}

	if req.AccountID != nil && strings.TrimSpace(*req.AccountID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.AccountID))
		if err != nil {
			return repository.ExpenseInput{}, errors.New("invalid account_id")
		}
		input.AccountID = &parsed
	}

	return input, nil
}

func parseExpenseFilter(c echo.Context) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.From = parsed
	}

	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.To = parsed
	}

	filter.Category = strings.TrimSpace(c.QueryParam("category"))

	return filter, nil
}
