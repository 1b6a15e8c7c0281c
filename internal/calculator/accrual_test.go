package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpendQueue/internal/model"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newQueue(income model.Income, balance model.Money, last time.Time) *model.Queue {
	q := model.NewQueue("test", last)
	q.Income = income
	q.CurrentBalance = balance
	return q
}

func TestRecalculate_OneDayAtHundredPerDay(t *testing.T) {
	now := time.Now()
	q := newQueue(model.Income{Amount: 100, IntervalInDays: 1}, model.Zero, now.Add(-24*time.Hour))

	ts, balance := Recalculate(q, now)

	assert.InDelta(t, 100.0, balance.Float64(), 0.01)
	assert.True(t, ts.Equal(now.Truncate(time.Second)))
	// The queue itself is untouched.
	assert.True(t, q.CurrentBalance.IsZero())
}

func TestRecalculate_Linearity(t *testing.T) {
	income := model.Income{Amount: 37.25, IntervalInDays: 7}
	start := model.NewMoney(1050, -2)
	t1 := 3*time.Hour + 17*time.Second
	t2 := 2*24*time.Hour + 41*time.Minute

	stepped := newQueue(income, start, t0)
	Apply(stepped, t0.Add(t1))
	Apply(stepped, t0.Add(t1+t2))

	once := newQueue(income, start, t0)
	Apply(once, t0.Add(t1+t2))

	assert.True(t, stepped.CurrentBalance.Equal(once.CurrentBalance),
		"stepped %s != once %s", stepped.CurrentBalance.Exact(), once.CurrentBalance.Exact())
	assert.True(t, stepped.LastCalculation.Equal(once.LastCalculation.Time))
}

func TestRecalculate_SubSecondTicksDoNotDrift(t *testing.T) {
	income := model.Income{Amount: 86400, IntervalInDays: 1} // one unit per second

	q := newQueue(income, model.Zero, t0)
	for i := 1; i <= 10; i++ {
		Apply(q, t0.Add(time.Duration(i)*1500*time.Millisecond))
	}

	// 15s elapsed in total, truncated to whole seconds at every step.
	assert.True(t, q.CurrentBalance.Equal(model.MoneyFromInt(15)), "got %s", q.CurrentBalance.Exact())
}

func TestRecalculate_NegativeElapsed(t *testing.T) {
	income := model.Income{Amount: 86400, IntervalInDays: 1}
	q := newQueue(income, model.MoneyFromInt(10), t0)

	_, balance := Recalculate(q, t0.Add(-4*time.Second))
	assert.True(t, balance.Equal(model.MoneyFromInt(6)))
}

func TestApply_PausedNeverCredits(t *testing.T) {
	q := newQueue(model.Income{Amount: 100, IntervalInDays: 1}, model.MoneyFromInt(5), t0)
	q.Paused = true

	for i := 1; i <= 5; i++ {
		now := t0.Add(time.Duration(i) * time.Hour)
		Apply(q, now)
		assert.True(t, q.CurrentBalance.Equal(model.MoneyFromInt(5)))
		assert.True(t, q.LastCalculation.Equal(now))
	}

	// Unpausing does not catch up on the paused hours.
	q.Paused = false
	Apply(q, t0.Add(5*time.Hour))
	assert.True(t, q.CurrentBalance.Equal(model.MoneyFromInt(5)))
}

func TestRatePerSecond(t *testing.T) {
	rate := RatePerSecond(model.Income{Amount: 86400, IntervalInDays: 2})
	want, err := model.ParseMoney("0.5")
	require.NoError(t, err)
	assert.True(t, rate.Equal(want))

	assert.True(t, RatePerSecond(model.Income{Amount: 10, IntervalInDays: 0}).IsZero())
}

func TestAdvance(t *testing.T) {
	q := newQueue(model.Income{Amount: 100, IntervalInDays: 1}, model.Zero, t0)
	Advance(q, t0.Add(48*time.Hour))
	assert.True(t, q.CurrentBalance.IsZero())
	assert.True(t, q.LastCalculation.Equal(t0.Add(48*time.Hour)))
}
