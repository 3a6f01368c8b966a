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
	"example.com/household-finance/internal/repository"
)

type AssetHandler struct {
	Assets *repository.AssetRepository
}

// NewAssetHandler создает обработчик активов.
func NewAssetHandler(assets *repository.AssetRepository) *AssetHandler {
	return &AssetHandler{Assets: assets}
}

type AssetRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Kind       string `json:"kind" validate:"required,max=100"`
	ValueCents int64  `json:"value_cents" validate:"gte=0"`
	ValuedOn   string `json:"valued_on" validate:"required"`
}

// Create создает актив.
func (h *AssetHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	name, kind, valueCents, valuedOn, err := bindAssetRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	asset, err := h.Assets.Create(c.Request().Context(), userID, name, kind, valueCents, valuedOn)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, asset)
}

// List возвращает активы пользователя.
func (h *AssetHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	assets, err := h.Assets.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Asset{"assets": assets})
}

// Update обновляет актив и его оценку.
func (h *AssetHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid asset id")
	}

	name, kind, valueCents, valuedOn, err := bindAssetRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	asset, err := h.Assets.Update(c.Request().Context(), userID, assetID, name, kind, valueCents, valuedOn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "asset not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, asset)
}

// Delete удаляет актив.
func (h *AssetHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	assetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid asset id")
	}

	if err := h.Assets.Delete(c.Request().Context(), userID, assetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "asset not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindAssetRequest(c echo.Context) (string, string, int64, time.Time, error) {
	var req AssetRequest
	if err := c.Bind(&req); err != nil {
		return "", "", 0, time.Time{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return "", "", 0, time.Time{}, errors.New("validation failed")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", "", 0, time.Time{}, errors.New("name is required")
	}

	valuedOn, err := parseDate(req.ValuedOn)
	if err != nil {
		return "", "", 0, time.Time{}, err
	}

	return name, strings.TrimSpace(req.Kind), req.ValueCents, valuedOn, nil
}
