package recorder

import (
	"time"

	"SpendQueue/internal/model"
)

// Event kinds written to the history.
const (
	KindPurchase     = "PURCHASE"
	KindBudget       = "BUDGET"
	KindQueueCreated = "QUEUE_CREATED"
	KindPause        = "PAUSE"
	KindUnpause      = "UNPAUSE"
)

// PurchaseEvent records a completed purchase.
type PurchaseEvent struct {
	Queue        string
	Item         string
	Cost         model.Money
	Forced       bool
	BalanceAfter model.Money
	At           time.Time
}

// BudgetEvent records an income change.
type BudgetEvent struct {
	Queue          string
	Amount         float64
	IntervalInDays uint64
	At             time.Time
}

// QueueEvent records queue lifecycle and pause changes. Queue is empty for
// directory-wide events.
type QueueEvent struct {
	Kind  string // KindQueueCreated, KindPause or KindUnpause
	Queue string
	At    time.Time
}

// Event is one row of the combined history, newest first.
type Event struct {
	Timestamp int64  `db:"timestamp"`
	Kind      string `db:"kind"`
	Queue     string `db:"queue"`
	Detail    string `db:"detail"`
	Amount    string `db:"amount"`
}

// Time converts the stored unix timestamp.
func (e Event) Time() time.Time { return time.Unix(e.Timestamp, 0) }

// Recorder persists an audit history next to the state file. The state file
// stays the source of truth; callers log recorder errors and carry on.
type Recorder interface {
	RecordPurchase(evt *PurchaseEvent) error
	RecordBudget(evt *BudgetEvent) error
	RecordQueueEvent(evt *QueueEvent) error
	Recent(limit int) ([]Event, error)
	Close() error
}
