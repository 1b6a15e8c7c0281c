// Package purchase implements the operations on a single queue's pending and
// past purchase lists.
package purchase

import (
	"errors"
	"math/rand/v2"
	"time"

	"SpendQueue/internal/model"
)

var (
	ErrEmptyQueue        = errors.New("no item in the queue")
	ErrTooFewItems       = errors.New("need at least two items to bump")
	ErrInsufficientFunds = errors.New("not enough money accumulated")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrNoLink            = errors.New("item has no purchase link")
)

// Source picks a uniform integer in [0, n).
type Source interface {
	IntN(n int) int
}

// NewSource returns a Source seeded from the runtime's random generator.
func NewSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// IsRejection reports whether err is a domain rejection: the command is a
// no-op on the lists but otherwise completes normally.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptyQueue) ||
		errors.Is(err, ErrTooFewItems) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrNoLink)
}

// Head returns the next purchase candidate.
func Head(q *model.Queue) (model.Item, bool) {
	if len(q.FuturePurchases) == 0 {
		return model.Item{}, false
	}
	return q.FuturePurchases[0], true
}

// Add inserts item at the head when prepend is set, otherwise at the tail.
func Add(q *model.Queue, item model.Item, prepend bool) error {
	if item.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	item.TimePurchased = nil
	if prepend {
		q.FuturePurchases = append([]model.Item{item}, q.FuturePurchases...)
	} else {
		q.FuturePurchases = append(q.FuturePurchases, item)
	}
	return nil
}

// DeleteHead discards the head item without recording it.
func DeleteHead(q *model.Queue) (model.Item, error) {
	head, ok := Head(q)
	if !ok {
		return model.Item{}, ErrEmptyQueue
	}
	q.FuturePurchases = q.FuturePurchases[1:]
	return head, nil
}

// BumpHead moves the head to a uniformly random index in the inclusive range
// [1, n-1], where n is the length after removing it, so a different item
// always becomes head. With two items n-1 is 0 and the only valid slot, 1, is
// used. It returns the new index of the bumped item.
func BumpHead(q *model.Queue, rng Source) (int, error) {
	if len(q.FuturePurchases) < 2 {
		return 0, ErrTooFewItems
	}
	head := q.FuturePurchases[0]
	rest := q.FuturePurchases[1:]

	upper := max(len(rest)-1, 1)
	pos := 1 + rng.IntN(upper)

	out := make([]model.Item, 0, len(q.FuturePurchases))
	out = append(out, rest[:pos]...)
	out = append(out, head)
	out = append(out, rest[pos:]...)
	q.FuturePurchases = out
	return pos, nil
}

// Buy purchases the head item for cost. It is allowed when cost is strictly
// below the balance, or when force is set (the balance may then go negative).
// The recorded item carries the price actually paid and the purchase time.
// A rejection leaves q untouched.
func Buy(q *model.Queue, cost model.Money, force bool, now time.Time) (model.Item, error) {
	head, ok := Head(q)
	if !ok {
		return model.Item{}, ErrEmptyQueue
	}
	if cost.IsNegative() {
		return model.Item{}, ErrNegativeAmount
	}
	if !force && !cost.LessThan(q.CurrentBalance) {
		return model.Item{}, ErrInsufficientFunds
	}

	q.CurrentBalance = q.CurrentBalance.Sub(cost)
	ts := model.NewTimestamp(now)
	head.Amount = cost
	head.TimePurchased = &ts
	q.FuturePurchases = q.FuturePurchases[1:]
	q.PastPurchases = append(q.PastPurchases, head)
	return head, nil
}

// Peek returns the head's purchase link without changing anything.
func Peek(q *model.Queue) (model.Item, string, error) {
	head, ok := Head(q)
	if !ok {
		return model.Item{}, "", ErrEmptyQueue
	}
	if head.PurchaseLink == nil || *head.PurchaseLink == "" {
		return head, "", ErrNoLink
	}
	return head, *head.PurchaseLink, nil
}

// Purchasable is the display check used by status reports. It is >=, unlike
// the strict < that Buy enforces, so an item costing exactly the balance is
// shown as purchasable but still needs force to buy.
func Purchasable(q *model.Queue) bool {
	head, ok := Head(q)
	if !ok {
		return false
	}
	return q.CurrentBalance.GreaterThanOrEqual(head.Amount)
}
