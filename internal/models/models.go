package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountKind string

type RuleType string

type FundStatus string

const (
	AccountKindChecking AccountKind = "checking"
	AccountKindSavings  AccountKind = "savings"
	AccountKindCash     AccountKind = "cash"
	AccountKindCard     AccountKind = "card"

	RuleTypePercentage RuleType = "percentage"
	RuleTypeFixed      RuleType = "fixed"

	FundStatusActive    FundStatus = "active"
	FundStatusCompleted FundStatus = "completed"
	FundStatusPaused    FundStatus = "paused"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

type Account struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Name         string      `json:"name"`
	Kind         AccountKind `json:"kind"`
	Currency     string      `json:"currency"`
	BalanceCents int64       `json:"balance_cents"`
	IsArchived   bool        `json:"is_archived"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Fund описывает накопительную корзину с правилом распределения дохода.
// RuleType может быть пустым у унаследованных записей: такие фонды планируются в 0.
type Fund struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name"`
	Icon         string     `json:"icon"`
	Color        string     `json:"color"`
	TargetCents  *int64     `json:"target_cents,omitempty"`
	TargetDate   *time.Time `json:"target_date,omitempty"`
	RuleType     RuleType   `json:"rule_type"`
	RuleValue    int64      `json:"rule_value"`
	BalanceCents int64      `json:"balance_cents"`
	IsVirtual    bool       `json:"is_virtual"`
	Status       FundStatus `json:"status"`
	AccountID    *uuid.UUID `json:"account_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Income struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Source      string    `json:"source"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ReceivedOn  time.Time `json:"received_on"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncomeDistribution описывает плановую или подтвержденную долю дохода в фонде.
// Пока IsCompleted=false значим только PlannedCents; после подтверждения
// ActualCents фиксируется и больше не меняется.
type IncomeDistribution struct {
	ID           uuid.UUID `json:"id"`
	IncomeID     uuid.UUID `json:"income_id"`
	FundID       uuid.UUID `json:"fund_id"`
	PlannedCents int64     `json:"planned_cents"`
	ActualCents  int64     `json:"actual_cents"`
	IsCompleted  bool      `json:"is_completed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Expense struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	AccountID   *uuid.UUID `json:"account_id,omitempty"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	SpentOn     time.Time  `json:"spent_on"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Budget struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Category   string    `json:"category"`
	Month      time.Time `json:"month"`
	LimitCents int64     `json:"limit_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Credit struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	Lender              string    `json:"lender"`
	PrincipalCents      int64     `json:"principal_cents"`
	RemainingCents      int64     `json:"remaining_cents"`
	RateBps             int       `json:"rate_bps"`
	MonthlyPaymentCents int64     `json:"monthly_payment_cents"`
	DueDay              int       `json:"due_day"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Asset struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	ValueCents int64     `json:"value_cents"`
	ValuedOn   time.Time `json:"valued_on"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
