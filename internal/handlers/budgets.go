package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/repository"
)

type BudgetHandler struct {
	Budgets *repository.BudgetRepository
}

// NewBudgetHandler создает обработчик месячных бюджетов.
func NewBudgetHandler(budgets *repository.BudgetRepository) *BudgetHandler {
	return &BudgetHandler{Budgets: budgets}
}

type BudgetRequest struct {
	Category   string `json:"category" validate:"required,max=100"`
	Month      string `json:"month" validate:"required"`
	LimitCents int64  `json:"limit_cents" validate:"gt=0"`
}

type BudgetResponse struct {
	ID         uuid.UUID `json:"id"`
	Category   string    `json:"category"`
	Month      string    `json:"month"`
	LimitCents int64     `json:"limit_cents"`
	SpentCents int64     `json:"spent_cents"`
}

// Upsert создает или обновляет лимит категории на месяц.
func (h *BudgetHandler) Upsert(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		return badRequest(c, "category is required")
	}

	month, err := parseMonth(req.Month)
	if err != nil {
		return badRequest(c, err.Error())
	}

	budget, err := h.Budgets.Upsert(c.Request().Context(), userID, category, month, req.LimitCents)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, BudgetResponse{
		ID:         budget.ID,
		Category:   budget.Category,
		Month:      budget.Month.Format(monthLayout),
		LimitCents: budget.LimitCents,
	})
}

// List возвращает бюджеты месяца с потраченными суммами.
// Без параметра month берется текущий месяц.
func (h *BudgetHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	month := time.Now().UTC()
	if raw := strings.TrimSpace(c.QueryParam("month")); raw != "" {
		parsed, err := parseMonth(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		month = parsed
	}

	budgets, err := h.Budgets.ListByMonth(c.Request().Context(), userID, month)
	if err != nil {
		return serverError(c)
	}

	response := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		response = append(response, BudgetResponse{
			ID:         b.Budget.ID,
			Category:   b.Budget.Category,
			Month:      b.Budget.Month.Format(monthLayout),
			LimitCents: b.Budget.LimitCents,
			SpentCents: b.SpentCents,
		})
	}

	return c.JSON(http.StatusOK, map[string][]BudgetResponse{"budgets": response})
}

// Delete удаляет бюджет.
func (h *BudgetHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	budgetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid budget id")
	}

	if err := h.Budgets.Delete(c.Request().Context(), userID, budgetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "budget not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}
