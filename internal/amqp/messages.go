package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/core"
)

// ExpenseRecordedMessage announces a record persisted at Position in the
// primary ledger. It carries the full record so consumers need no access
// to the primary store.
type ExpenseRecordedMessage struct {
	ID        uuid.UUID `json:"id"`
	Position  int       `json:"position"`
	Date      string    `json:"date"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(position int, e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:        uuid.New(),
		Position:  position,
		Date:      e.Date.String(),
		Category:  e.Category.String(),
		Amount:    core.FormatAmount(e.Amount),
		Note:      e.Note,
		Timestamp: time.Now().UTC(),
	}
}

// Expense rebuilds the record with its note normalized. It does not validate it.
func (m *ExpenseRecordedMessage) Expense() (core.Expense, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	amount, err := core.ParseStoredAmount(m.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("message %s: %w", m.ID, err)
	}
	return core.Expense{
		Date:     date,
		Category: core.Category(m.Category),
		Amount:   amount,
		Note:     core.NormalizeNote(m.Note),
	}, nil
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil {
		return nil, fmt.Errorf("message without id")
	}
	return &msg, nil
}
