package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/models"
	"example.com/household-finance/internal/repository"
)

const defaultCurrency = "USD"

type AccountHandler struct {
	Accounts *repository.AccountRepository
}

// NewAccountHandler создает обработчик счетов.
func NewAccountHandler(accounts *repository.AccountRepository) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

type AccountRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Kind         string `json:"kind" validate:"required,oneof=checking savings cash card"`
	Currency     string `json:"currency" validate:"omitempty,len=3"`
	BalanceCents int64  `json:"balance_cents" validate:"gte=0"`
}

type ArchiveRequest struct {
	IsArchived bool `json:"is_archived"`
}

type AdjustBalanceRequest struct {
	DeltaCents int64 `json:"delta_cents" validate:"required"`
}

// List возвращает счета пользователя.
func (h *AccountHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accounts, err := h.Accounts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Account{"accounts": accounts})
}

// Create создает счет.
func (h *AccountHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	account, err := h.Accounts.Create(c.Request().Context(), userID, name, models.AccountKind(req.Kind), normalizeCurrency(req.Currency), req.BalanceCents)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, account)
}

// Get возвращает счет по идентификатору.
func (h *AccountHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	account, err := h.Accounts.GetByID(c.Request().Context(), userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, account)
}

// Update обновляет название, тип и валюту счета.
func (h *AccountHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	var req AccountRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	account, err := h.Accounts.Update(c.Request().Context(), userID, accountID, name, models.AccountKind(req.Kind), normalizeCurrency(req.Currency))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, account)
}

// Archive помечает счет архивным или возвращает из архива.
func (h *AccountHandler) Archive(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	var req ArchiveRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	account, err := h.Accounts.SetArchived(c.Request().Context(), userID, accountID, req.IsArchived)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, account)
}

// AdjustBalance корректирует баланс счета на дельту.
func (h *AccountHandler) AdjustBalance(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	var req AdjustBalanceRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	account, err := h.Accounts.AdjustBalance(c.Request().Context(), userID, accountID, req.DeltaCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, account)
}

// Delete удаляет счет. Привязанные расходы и фонды остаются без счета.
func (h *AccountHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	if err := h.Accounts.Delete(c.Request().Context(), userID, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "account not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func normalizeCurrency(currency string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(currency))
	if trimmed == "" {
		return defaultCurrency
	}
	return trimmed
}
