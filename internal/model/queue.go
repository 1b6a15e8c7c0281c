package model

import "time"

// Income is the accrual rate: Amount per IntervalInDays.
type Income struct {
	Amount         float64 `json:"amount"`
	IntervalInDays uint64  `json:"interval_in_days"`
}

// DefaultIncome is what a freshly created queue earns.
var DefaultIncome = Income{Amount: 1, IntervalInDays: 1}

// Item is a desired or completed purchase. TimePurchased is set exactly when
// the item lives in a queue's PastPurchases.
type Item struct {
	Name          string     `json:"name"`
	Amount        Money      `json:"amount"`
	PurchaseLink  *string    `json:"purchase_link"`
	TimePurchased *Timestamp `json:"time_purchased"`
}

// Bought reports whether the item has been purchased.
func (i Item) Bought() bool { return i.TimePurchased != nil }

// Link returns the purchase link, or "" if there is none.
func (i Item) Link() string {
	if i.PurchaseLink == nil {
		return ""
	}
	return *i.PurchaseLink
}

// Queue is an independently budgeted list of pending purchases plus history.
// FuturePurchases is ordered by priority; only index 0 may be bought.
type Queue struct {
	Income          Income    `json:"income"`
	Name            string    `json:"name"`
	LastCalculation Timestamp `json:"last_calculation"`
	CurrentBalance  Money     `json:"current_balance"`
	FuturePurchases []Item    `json:"future_purchases"`
	PastPurchases   []Item    `json:"past_purchases"`
	Paused          bool      `json:"paused"`
}

// NewQueue returns an empty queue with the default income.
func NewQueue(name string, now time.Time) *Queue {
	return &Queue{
		Income:          DefaultIncome,
		Name:            name,
		LastCalculation: NewTimestamp(now),
		CurrentBalance:  Zero,
		FuturePurchases: []Item{},
		PastPurchases:   []Item{},
	}
}
