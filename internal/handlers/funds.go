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

const defaultFundColor = "#4A90D9"

type FundHandler struct {
	Funds *repository.FundRepository
}

// NewFundHandler создает обработчик фондов.
func NewFundHandler(funds *repository.FundRepository) *FundHandler {
	return &FundHandler{Funds: funds}
}

type FundRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Icon        string  `json:"icon" validate:"omitempty,max=50"`
	Color       *string `json:"color"`
	TargetCents *int64  `json:"target_cents" validate:"omitempty,gt=0"`
	TargetDate  *string `json:"target_date"`
	RuleType    string  `json:"rule_type" validate:"required"`
	RuleValue   int64   `json:"rule_value"`
	IsVirtual   *bool   `json:"is_virtual"`
	AccountID   *string `json:"account_id"`
}

type FundStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed paused"`
}

type FundAdjustRequest struct {
	DeltaCents int64 `json:"delta_cents" validate:"required"`
}

// List возвращает фонды пользователя без удаленных.
func (h *FundHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	funds, err := h.Funds.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Fund{"funds": funds})
}

// Create создает фонд с правилом распределения.
func (h *FundHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	input, err := bindFundInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	fund, err := h.Funds.Create(c.Request().Context(), userID, input)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, fund)
}

// Get возвращает фонд по идентификатору.
func (h *FundHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	fundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	fund, err := h.Funds.GetByID(c.Request().Context(), userID, fundID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "fund not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, fund)
}

// Update обновляет фонд и его правило.
func (h *FundHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	fundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	input, err := bindFundInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	fund, err := h.Funds.Update(c.Request().Context(), userID, fundID, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "fund not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, fund)
}

// UpdateStatus переводит фонд между состояниями active, completed и paused.
func (h *FundHandler) UpdateStatus(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	fundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	var req FundStatusRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	fund, err := h.Funds.UpdateStatus(c.Request().Context(), userID, fundID, models.FundStatus(req.Status))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "fund not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, fund)
}

// AdjustBalance вносит ручную корректировку баланса фонда.
func (h *FundHandler) AdjustBalance(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	fundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	var req FundAdjustRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	fund, err := h.Funds.AdjustBalance(c.Request().Context(), userID, fundID, req.DeltaCents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "fund not found")
		}
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "fund balance cannot go negative")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, fund)
}

// Delete скрывает фонд. История распределений сохраняется.
func (h *FundHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	fundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid fund id")
	}

	if err := h.Funds.Delete(c.Request().Context(), userID, fundID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "fund not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindFundInput(c echo.Context) (repository.FundInput, error) {
	var req FundRequest
	if err := c.Bind(&req); err != nil {
		return repository.FundInput{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return repository.FundInput{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return repository.FundInput{}, errors.New("name is required")
	}

	ruleType, err := validateRule(req.RuleType, req.RuleValue)
	if err != nil {
		return repository.FundInput{}, err
	}

	input := repository.FundInput{
		Name:        name,
		Icon:        strings.TrimSpace(req.Icon),
		Color:       defaultFundColor,
		TargetCents: req.TargetCents,
		RuleType:    ruleType,
		RuleValue:   req.RuleValue,
	}

	if req.Color != nil {
		value, err := validateHexColor(*req.Color)
		if err != nil {
			return repository.FundInput{}, err
		}
		input.Color = value
	}

	if req.TargetDate != nil {
		parsed, err := parseDate(*req.TargetDate)
		if err != nil {
			return repository.FundInput{}, err
		}
		input.TargetDate = &parsed
	}

	if req.IsVirtual != nil {
		input.IsVirtual = *req.IsVirtual
	}

	if req.AccountID != nil && strings.TrimSpace(*req.AccountID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.AccountID))
		if err != nil {
			return repository.FundInput{}, errors.New("invalid account_id")
		}
		input.AccountID = &parsed
	}

	return input, nil
}

// validateRule проверяет правило на записи. Планировщик дохода малформные
// правила молча пропускает, поэтому единственная точка контроля здесь.
func validateRule(ruleType string, ruleValue int64) (models.RuleType, error) {
	switch models.RuleType(strings.TrimSpace(ruleType)) {
	case models.RuleTypePercentage:
		if ruleValue < 0 || ruleValue > 100 {
			return "", errors.New("percentage rule value must be between 0 and 100")
		}
		return models.RuleTypePercentage, nil
	case models.RuleTypeFixed:
		if ruleValue < 0 {
			return "", errors.New("fixed rule value must not be negative")
		}
		return models.RuleTypeFixed, nil
	default:
		return "", errors.New("rule_type must be percentage or fixed")
	}
}

func validateHexColor(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.New("color is required")
	}
	if !isHexColor(trimmed) {
		return "", errors.New("color must be a hex color")
	}

	return trimmed, nil
}

func isHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}

	for i := 1; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}

	return true
}
