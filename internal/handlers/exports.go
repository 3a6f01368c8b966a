package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/models"
	"example.com/household-finance/internal/repository"
)

const (
	exportTypeExpenses = "expenses"
	exportTypeIncomes  = "incomes"
)

type ExportHandler struct {
	Expenses *repository.ExpenseRepository
	Incomes  *repository.IncomeRepository
}

// NewExportHandler создает обработчик выгрузок.
func NewExportHandler(expenses *repository.ExpenseRepository, incomes *repository.IncomeRepository) *ExportHandler {
	return &ExportHandler{Expenses: expenses, Incomes: incomes}
}

// ExportCSV выгружает расходы или доходы в CSV-файл.
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeExpenses
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeExpenses:
		filter, err := parseExpenseFilter(c)
		if err != nil {
			return badRequest(c, err.Error())
		}

		expenses, err := h.Expenses.ListByUser(c.Request().Context(), userID, filter)
		if err != nil {
			return serverError(c)
		}
		if err := writeExpensesCSV(writer, expenses); err != nil {
			return serverError(c)
		}
	case exportTypeIncomes:
		incomes, err := h.Incomes.ListByUser(c.Request().Context(), userID)
		if err != nil {
			return serverError(c)
		}
		if err := writeIncomesCSV(writer, incomes); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := exportType + "-" + time.Now().UTC().Format(dateLayout) + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON выгружает доходы с распределениями в JSON-файл.
func (h *ExportHandler) ExportJSON(c echo.Context) error {
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

	filename := "incomes-" + time.Now().UTC().Format(dateLayout) + ".json"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, map[string][]IncomeResponse{"incomes": response})
}

func writeExpensesCSV(writer *csv.Writer, expenses []models.Expense) error {
	header := []string{
		"id",
		"spent_on",
		"category",
		"description",
		"amount_cents",
		"currency",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, expense := range expenses {
		record := []string{
			expense.ID.String(),
			expense.SpentOn.Format(dateLayout),
			expense.Category,
			expense.Description,
			formatInt64(expense.AmountCents),
			expense.Currency,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeIncomesCSV(writer *csv.Writer, incomes []repository.IncomeWithDistributions) error {
	header := []string{
		"income_id",
		"source",
		"received_on",
		"amount_cents",
		"remaining_cents",
		"fund_id",
		"planned_cents",
		"actual_cents",
		"is_completed",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, income := range incomes {
		base := []string{
			income.Income.ID.String(),
			income.Income.Source,
			income.Income.ReceivedOn.Format(dateLayout),
			formatInt64(income.Income.AmountCents),
			formatInt64(income.RemainingCents),
		}

		if len(income.Distributions) == 0 {
			record := append(append([]string{}, base...), "", "", "", "")
			if err := writer.Write(record); err != nil {
				return err
			}
			continue
		}

		for _, d := range income.Distributions {
			record := append(append([]string{}, base...),
				d.FundID.String(),
				formatInt64(d.PlannedCents),
				formatInt64(d.ActualCents),
				formatBool(d.IsCompleted),
			)
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
