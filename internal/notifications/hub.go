// Package notifications рассылает события дашборда через SSE: зачисления
// в фонды, новые доходы, превышения бюджетов.
package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventIncomeCreated   = "income_created"
	EventFundCredited    = "fund_credited"
	EventBudgetExceeded  = "budget_exceeded"
	EventCreditPaid      = "credit_paid"
	EventImportCompleted = "import_completed"
)

type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// FundCredited строит событие о зачислении подтвержденного распределения.
func FundCredited(fundID uuid.UUID, amountCents, balanceCents int64) Event {
	return Event{
		Type: EventFundCredited,
		Data: map[string]any{
			"fund_id":       fundID,
			"amount_cents":  amountCents,
			"balance_cents": balanceCents,
		},
	}
}

// IncomeCreated строит событие о новом доходе с остатком после плана.
func IncomeCreated(incomeID uuid.UUID, amountCents, remainingCents int64) Event {
	return Event{
		Type: EventIncomeCreated,
		Data: map[string]any{
			"income_id":       incomeID,
			"amount_cents":    amountCents,
			"remaining_cents": remainingCents,
		},
	}
}

// BudgetExceeded строит событие о превышении лимита бюджета по категории.
func BudgetExceeded(category string, limitCents, spentCents int64) Event {
	return Event{
		Type: EventBudgetExceeded,
		Data: map[string]any{
			"category":    category,
			"limit_cents": limitCents,
			"spent_cents": spentCents,
		},
	}
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[userID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам пользователя. Медленные
// подписчики с полным буфером событие не получают.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[userID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
