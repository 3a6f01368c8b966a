package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/repository"
)

type StatsHandler struct {
	Stats *repository.StatsRepository
}

// NewStatsHandler создает обработчик статистики дашборда.
func NewStatsHandler(stats *repository.StatsRepository) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

type OverviewResponse struct {
	AccountsCents     int64 `json:"accounts_cents"`
	FundsCents        int64 `json:"funds_cents"`
	AssetsCents       int64 `json:"assets_cents"`
	CreditsCents      int64 `json:"credits_cents"`
	NetWorthCents     int64 `json:"net_worth_cents"`
	MonthIncomeCents  int64 `json:"month_income_cents"`
	MonthExpenseCents int64 `json:"month_expense_cents"`
}

type CategorySpendResponse struct {
	Category   string `json:"category"`
	SpentCents int64  `json:"spent_cents"`
}

type CashflowResponse struct {
	Month        string `json:"month"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

// Overview возвращает сводку балансов и оборотов текущего месяца.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.Stats.Overview(c.Request().Context(), userID, time.Now().UTC())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, OverviewResponse{
		AccountsCents:     stats.AccountsCents,
		FundsCents:        stats.FundsCents,
		AssetsCents:       stats.AssetsCents,
		CreditsCents:      stats.CreditsCents,
		NetWorthCents:     stats.NetWorthCents,
		MonthIncomeCents:  stats.MonthIncomeCents,
		MonthExpenseCents: stats.MonthExpenseCents,
	})
}

// Categories возвращает траты месяца по категориям.
func (h *StatsHandler) Categories(c echo.Context) error {
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

	spending, err := h.Stats.SpendingByCategory(c.Request().Context(), userID, month)
	if err != nil {
		return serverError(c)
	}

	response := make([]CategorySpendResponse, 0, len(spending))
	for _, s := range spending {
		response = append(response, CategorySpendResponse{
			Category:   s.Category,
			SpentCents: s.SpentCents,
		})
	}

	return c.JSON(http.StatusOK, map[string][]CategorySpendResponse{"categories": response})
}

// Cashflow возвращает доходы и расходы по месяцам.
func (h *StatsHandler) Cashflow(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	months := 6
	if raw := strings.TrimSpace(c.QueryParam("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid months")
		}
		if parsed > 24 {
			parsed = 24
		}
		months = parsed
	}

	cashflow, err := h.Stats.MonthlyCashflow(c.Request().Context(), userID, months)
	if err != nil {
		return serverError(c)
	}

	response := make([]CashflowResponse, 0, len(cashflow))
	for _, m := range cashflow {
		response = append(response, CashflowResponse{
			Month:        m.Month.Format(monthLayout),
			IncomeCents:  m.IncomeCents,
			ExpenseCents: m.ExpenseCents,
		})
	}

	return c.JSON(http.StatusOK, map[string][]CashflowResponse{"cashflow": response})
}
