package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/importer"
	"example.com/household-finance/internal/notifications"
	"example.com/household-finance/internal/repository"
)

const fallbackCategory = "uncategorized"

var (
	errUploadRequired = errors.New("file is required")
	errUploadTooLarge = errors.New("file is too large")
	errUploadRead     = errors.New("cannot read file")
)

type ImportHandler struct {
	Analyzer       *importer.Analyzer
	Expenses       *repository.ExpenseRepository
	Notifier       *notifications.Hub
	MaxUploadBytes int64
}

// NewImportHandler создает обработчик импорта CSV-выписок.
func NewImportHandler(analyzer *importer.Analyzer, expenses *repository.ExpenseRepository, notifier *notifications.Hub, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		Analyzer:       analyzer,
		Expenses:       expenses,
		Notifier:       notifier,
		MaxUploadBytes: maxUploadBytes,
	}
}

type ImportAnalyzeResponse struct {
	Mapping    importer.ColumnMapping `json:"mapping"`
	Rows       []importer.Row         `json:"rows"`
	ValidRows  int                    `json:"valid_rows"`
	ErrorRows  int                    `json:"error_rows"`
	Duplicates int                    `json:"duplicates"`
}

type ImportExecuteResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Analyze разбирает загруженный CSV и возвращает предпросмотр строк
// с пометками дубликатов. Ничего не записывает.
func (h *ImportHandler) Analyze(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	analysis, err := h.analyzeUpload(c, userID)
	if err != nil {
		return importError(c, err)
	}

	return c.JSON(http.StatusOK, ImportAnalyzeResponse{
		Mapping:    analysis.Mapping,
		Rows:       analysis.Rows,
		ValidRows:  analysis.ValidRows,
		ErrorRows:  analysis.ErrorRows,
		Duplicates: analysis.Duplicates,
	})
}

// Execute разбирает CSV повторно и записывает валидные строки как расходы.
// Строки с ошибками пропускаются; дубликаты пропускаются, если не передан
// include_duplicates=true.
func (h *ImportHandler) Execute(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	includeDuplicates := false
	if raw := strings.TrimSpace(c.FormValue("include_duplicates")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid include_duplicates")
		}
		includeDuplicates = parsed
	}

	category := strings.TrimSpace(c.FormValue("category"))

	analysis, err := h.analyzeUpload(c, userID)
	if err != nil {
		return importError(c, err)
	}

	inputs := make([]repository.ExpenseInput, 0, analysis.ValidRows)
	skipped := 0
	for _, row := range analysis.Rows {
		if row.Error != "" {
			skipped++
			continue
		}
		if row.IsDuplicate && !includeDuplicates {
			skipped++
			continue
		}

		rowCategory := row.Category
		if rowCategory == "" {
			rowCategory = category
		}
		if rowCategory == "" {
			rowCategory = fallbackCategory
		}

		inputs = append(inputs, repository.ExpenseInput{
			Category:    rowCategory,
			Description: row.Description,
			AmountCents: row.AmountCents,
			Currency:    defaultCurrency,
			SpentOn:     row.SpentOn,
		})
	}

	if len(inputs) > 0 {
		if _, err := h.Expenses.CreateBatch(c.Request().Context(), userID, inputs); err != nil {
			return serverError(c)
		}
	}

	h.Notifier.Publish(userID, notifications.Event{
		Type: notifications.EventImportCompleted,
		Data: map[string]any{"imported": len(inputs), "skipped": skipped},
	})

	return c.JSON(http.StatusOK, ImportExecuteResponse{
		Imported: len(inputs),
		Skipped:  skipped,
	})
}

func (h *ImportHandler) analyzeUpload(c echo.Context, userID uuid.UUID) (importer.Analysis, error) {
	file, err := openUpload(c, h.MaxUploadBytes)
	if err != nil {
		return importer.Analysis{}, err
	}
	defer file.Close()

	// Первый проход без проверки дубликатов дает период выписки.
	analysis, err := h.Analyzer.Analyze(io.LimitReader(file, h.MaxUploadBytes), nil)
	if err != nil {
		return importer.Analysis{}, err
	}

	from, to, ok := rowsPeriod(analysis.Rows)
	if !ok {
		return analysis, nil
	}

	duplicateKeys, err := h.Expenses.FindDuplicates(c.Request().Context(), userID, from, to)
	if err != nil {
		return importer.Analysis{}, err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return importer.Analysis{}, err
	}

	return h.Analyzer.Analyze(io.LimitReader(file, h.MaxUploadBytes), duplicateKeys)
}

func openUpload(c echo.Context, maxBytes int64) (multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errUploadRequired
	}
	if fileHeader.Size > maxBytes {
		return nil, errUploadTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errUploadRead
	}

	return file, nil
}

func rowsPeriod(rows []importer.Row) (time.Time, time.Time, bool) {
	var from, to time.Time
	found := false

	for _, row := range rows {
		if row.Error != "" {
			continue
		}
		if !found || row.SpentOn.Before(from) {
			from = row.SpentOn
		}
		if !found || row.SpentOn.After(to) {
			to = row.SpentOn
		}
		found = true
	}

	return from, to, found
}

func importError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, importer.ErrEmptyFile),
		errors.Is(err, importer.ErrNoHeader),
		errors.Is(err, importer.ErrTooManyRows),
		errors.Is(err, errUploadRequired),
		errors.Is(err, errUploadTooLarge),
		errors.Is(err, errUploadRead):
		return badRequest(c, err.Error())
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return badRequest(c, "malformed csv: "+parseErr.Error())
	}

	return serverError(c)
}
