package calculator

import (
	"time"

	"SpendQueue/internal/model"
)

// SecondsPerDay is the length of one income interval day.
const SecondsPerDay = 24 * 60 * 60

// RatePerSecond returns income.Amount / (interval × 86400). A zero-day
// interval earns nothing.
func RatePerSecond(income model.Income) model.Money {
	if income.IntervalInDays == 0 {
		return model.Zero
	}
	secondsInInterval := model.MoneyFromInt(SecondsPerDay).Mul(model.MoneyFromInt(int64(income.IntervalInDays)))
	return model.MoneyFromFloat(income.Amount).Div(secondsInInterval)
}

// Earned returns what income accrues over elapsed whole seconds. Negative
// elapsed time (clock moved backwards) yields a negative amount.
func Earned(income model.Income, elapsedSeconds int64) model.Money {
	return RatePerSecond(income).Mul(model.MoneyFromInt(elapsedSeconds))
}

// Recalculate computes the queue's balance as of now. It does not touch q;
// the returned timestamp is now truncated to whole seconds.
func Recalculate(q *model.Queue, now time.Time) (time.Time, model.Money) {
	now = now.Truncate(time.Second)
	elapsed := int64(now.Sub(q.LastCalculation.Time) / time.Second)
	return now, q.CurrentBalance.Add(Earned(q.Income, elapsed))
}

// Apply recalculates q and writes the result back. LastCalculation always
// advances; the balance only changes when the queue is not paused, so paused
// time is never credited, even after unpausing.
func Apply(q *model.Queue, now time.Time) {
	ts, balance := Recalculate(q, now)
	q.LastCalculation = model.NewTimestamp(ts)
	if !q.Paused {
		q.CurrentBalance = balance
	}
}

// Advance moves LastCalculation to now without crediting anything.
func Advance(q *model.Queue, now time.Time) {
	q.LastCalculation = model.NewTimestamp(now)
}
