package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-finance/internal/auth"
	"example.com/household-finance/internal/repository"
)

type AdminHandler struct {
	Repo *repository.AdminRepository
}

// NewAdminHandler создает обработчик админских эндпоинтов.
func NewAdminHandler(repo *repository.AdminRepository) *AdminHandler {
	return &AdminHandler{Repo: repo}
}

type AdminUserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	IncomeCount  int       `json:"income_count"`
	ExpenseCount int       `json:"expense_count"`
	FundCount    int       `json:"fund_count"`
	CreatedAt    string    `json:"created_at"`
}

type AdminUsersResponse struct {
	Total int                 `json:"total"`
	Users []AdminUserResponse `json:"users"`
}

type AdminUsageResponse struct {
	Users    int `json:"users"`
	Incomes  int `json:"incomes"`
	Expenses int `json:"expenses"`
	Funds    int `json:"funds"`
	Accounts int `json:"accounts"`
}

// ListUsers возвращает пользователей со счетчиками записей.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.Repo.ListUsers(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := make([]AdminUserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, AdminUserResponse{
			ID:           u.User.ID,
			Email:        u.User.Email,
			Name:         u.User.Name,
			IncomeCount:  u.IncomeCount,
			ExpenseCount: u.ExpenseCount,
			FundCount:    u.FundCount,
			CreatedAt:    u.User.CreatedAt.Format(timeLayout),
		})
	}

	return c.JSON(http.StatusOK, AdminUsersResponse{
		Total: len(response),
		Users: response,
	})
}

// Usage возвращает агрегированную статистику использования.
func (h *AdminHandler) Usage(c echo.Context) error {
	stats, err := h.Repo.Usage(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, AdminUsageResponse{
		Users:    stats.TotalUsers,
		Incomes:  stats.TotalIncomes,
		Expenses: stats.TotalExpenses,
		Funds:    stats.TotalFunds,
		Accounts: stats.TotalAccounts,
	})
}

// AdminMiddleware ограничивает доступ к админским роутам по email.
func AdminMiddleware(users *repository.UserRepository, emails []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := auth.UserIDFromContext(c)
			if !ok {
				return unauthorized(c)
			}

			if len(allowed) == 0 {
				return forbidden(c)
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return forbidden(c)
				}
				return serverError(c)
			}

			email := strings.ToLower(strings.TrimSpace(user.Email))
			if _, ok := allowed[email]; !ok {
				return forbidden(c)
			}

			return next(c)
		}
	}
}
