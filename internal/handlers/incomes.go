package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/models"
	"example.com/household-finance/internal/notifications"
	"example.com/household-finance/internal/repository"
)

type IncomeHandler struct {
	Incomes  *repository.IncomeRepository
	Notifier *notifications.Hub
}

// NewIncomeHandler создает обработчик доходов и распределений.
func NewIncomeHandler(incomes *repository.IncomeRepository, notifier *notifications.Hub) *IncomeHandler {
	return &IncomeHandler{Incomes: incomes, Notifier: notifier}
}

type IncomeRequest struct {
	Source      string `json:"source" validate:"required,max=200"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	ReceivedOn  string `json:"received_on" validate:"required"`
}

type DistributionPlanRequest struct {
	PlannedCents int64 `json:"planned_cents" validate:"gte=0"`
}

type ConfirmRequest struct {
	ActualCents *int64 `json:"actual_cents" validate:"omitempty,gte=0"`
}

type DistributionResponse struct {
	ID           uuid.UUID `json:"id"`
	FundID       uuid.UUID `json:"fund_id"`
	PlannedCents int64     `json:"planned_cents"`
	ActualCents  int64     `json:"actual_cents"`
	IsCompleted  bool      `json:"is_completed"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type IncomeResponse struct {
	ID             uuid.UUID              `json:"id"`
	Source         string                 `json:"source"`
	AmountCents    int64                  `json:"amount_cents"`
	Currency       string                 `json:"currency"`
	ReceivedOn     string                 `json:"received_on"`
	RemainingCents int64                  `json:"remaining_cents"`
	Distributions  []DistributionResponse `json:"distributions"`
	CreatedAt      time.Time              `json:"created_at"`
}

// Create записывает доход и планирует распределение по активным фондам.
func (h *IncomeHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		return badRequest(c, "source is required")
	}

	receivedOn, err := parseDate(req.ReceivedOn)
	if err != nil {
		return badRequest(c, err.Error())
	}

	income, err := h.Incomes.Create(c.Request().Context(), userID, source, req.AmountCents, normalizeCurrency(req.Currency), receivedOn)
	if err != nil {
		return serverError(c)
	}

	h.Notifier.Publish(userID, notifications.IncomeCreated(income.Income.ID, income.Income.AmountCents, income.RemainingCents))
	return c.JSON(http.StatusCreated, toIncomeResponse(income))
}

// List возвращает доходы пользователя с распределениями, новые первыми.
func (h *IncomeHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomes, err := h.Incomes.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]IncomeResponse, 0, len(incomes))
	for _, income := range incomes {
		response = append(response, toIncomeResponse(income))
	}

	return c.JSON(http.StatusOK, map[string][]IncomeResponse{"incomes": response})
}

// Get возвращает доход по идентификатору.
func (h *IncomeHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	income, err := h.Incomes.GetByID(c.Request().Context(), userID, incomeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// UpdateDistribution меняет плановую сумму неподтвержденного распределения.
func (h *IncomeHandler) UpdateDistribution(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	fundID, err := uuid.Parse(c.Param("fundId"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	var req DistributionPlanRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	income, err := h.Incomes.UpdateDistribution(c.Request().Context(), userID, incomeID, fundID, req.PlannedCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "distribution not found")
		}
		if errors.Is(err, repository.ErrCompleted) {
			return conflict(c, "distribution already confirmed")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// ConfirmDistribution подтверждает перевод в фонд и зачисляет сумму на
// его баланс. Без actual_cents подтверждается плановая сумма. Повторное
// подтверждение возвращает 409.
func (h *IncomeHandler) ConfirmDistribution(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	fundID, err := uuid.Parse(c.Param("fundId"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	var req ConfirmRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	actualCents := int64(-1)
	if req.ActualCents != nil {
		actualCents = *req.ActualCents
	}

	income, fundBalance, err := h.Incomes.ConfirmDistribution(c.Request().Context(), userID, incomeID, fundID, actualCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "distribution not found")
		}
		if errors.Is(err, repository.ErrCompleted) {
			return conflict(c, "distribution already confirmed")
		}
		return serverError(c)
	}

	confirmed := findDistribution(income.Distributions, fundID)
	if confirmed != nil {
		h.Notifier.Publish(userID, notifications.FundCredited(fundID, confirmed.ActualCents, fundBalance))
	}

	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// Delete удаляет доход вместе с неподтвержденными распределениями.
// Доход с подтвержденными переводами удалить нельзя.
func (h *IncomeHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	if err := h.Incomes.Delete(c.Request().Context(), userID, incomeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income not found")
		}
		if errors.Is(err, repository.ErrCompleted) {
			return conflict(c, "income has confirmed distributions")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func findDistribution(distributions []models.IncomeDistribution, fundID uuid.UUID) *models.IncomeDistribution {
	for i := range distributions {
		if distributions[i].FundID == fundID {
			return &distributions[i]
		}
	}
	return nil
}

func toIncomeResponse(income repository.IncomeWithDistributions) IncomeResponse {
	distributions := make([]DistributionResponse, 0, len(income.Distributions))
	for _, d := range income.Distributions {
		distributions = append(distributions, DistributionResponse{
			ID:           d.ID,
			FundID:       d.FundID,
			PlannedCents: d.PlannedCents,
			ActualCents:  d.ActualCents,
			IsCompleted:  d.IsCompleted,
			UpdatedAt:    d.UpdatedAt,
		})
	}

	return IncomeResponse{
		ID:             income.Income.ID,
		Source:         income.Income.Source,
		AmountCents:    income.Income.AmountCents,
		Currency:       income.Income.Currency,
		ReceivedOn:     income.Income.ReceivedOn.Format(dateLayout),
		RemainingCents: income.RemainingCents,
		Distributions:  distributions,
		CreatedAt:      income.Income.CreatedAt,
	}
}
