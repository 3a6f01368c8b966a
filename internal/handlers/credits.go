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

type CreditHandler struct {
	Credits  *repository.CreditRepository
	Notifier *notifications.Hub
}

// NewCreditHandler создает обработчик кредитов.
func NewCreditHandler(credits *repository.CreditRepository, notifier *notifications.Hub) *CreditHandler {
	return &CreditHandler{Credits: credits, Notifier: notifier}
}

type CreditRequest struct {
	Lender              string `json:"lender" validate:"required,max=200"`
	PrincipalCents      int64  `json:"principal_cents" validate:"gt=0"`
	RateBps             int    `json:"rate_bps" validate:"gte=0,lte=10000"`
	MonthlyPaymentCents int64  `json:"monthly_payment_cents" validate:"gte=0"`
	DueDay              int    `json:"due_day" validate:"gte=1,lte=28"`
}

type CreditPaymentRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"gt=0"`
}

// Create создает запись о кредите.
func (h *CreditHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	input, err := bindCreditInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	credit, err := h.Credits.Create(c.Request().Context(), userID, input)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, credit)
}

// List возвращает кредиты пользователя.
func (h *CreditHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	credits, err := h.Credits.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Credit{"credits": credits})
}

// Get возвращает кредит по идентификатору.
func (h *CreditHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid credit id")
	}

	credit, err := h.Credits.GetByID(c.Request().Context(), userID, creditID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "credit not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, credit)
}

// Update обновляет условия кредита.
func (h *CreditHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid credit id")
	}

	input, err := bindCreditInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	credit, err := h.Credits.Update(c.Request().Context(), userID, creditID, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "credit not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, credit)
}

// RecordPayment уменьшает остаток долга на сумму платежа.
func (h *CreditHandler) RecordPayment(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid credit id")
	}

	var req CreditPaymentRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	credit, err := h.Credits.RecordPayment(c.Request().Context(), userID, creditID, req.AmountCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "credit not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "payment exceeds remaining debt")
		}
		return serverError(c)
	}

	if credit.RemainingCents == 0 {
		h.Notifier.Publish(userID, notifications.Event{
			Type: notifications.EventCreditPaid,
			Data: map[string]any{"credit_id": credit.ID},
		})
	}

	return c.JSON(http.StatusOK, credit)
}

// Delete удаляет кредит.
func (h *CreditHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid credit id")
	}

	if err := h.Credits.Delete(c.Request().Context(), userID, creditID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "credit not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindCreditInput(c echo.Context) (repository.CreditInput, error) {
	var req CreditRequest
	if err := c.Bind(&req); err != nil {
		return repository.CreditInput{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return repository.CreditInput{}, errors.New("validation failed")
	}

	lender := strings.TrimSpace(req.Lender)
	if lender == "" {
		return repository.CreditInput{}, errors.New("lender is required")
	}

	return repository.CreditInput{
		Lender:              lender,
		PrincipalCents:      req.PrincipalCents,
		RateBps:             req.RateBps,
		MonthlyPaymentCents: req.MonthlyPaymentCents,
		DueDay:              req.DueDay,
	}, nil
}
