package fund

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"SpendQueue/internal/calculator"
	"SpendQueue/internal/model"
	"SpendQueue/internal/purchase"
	"SpendQueue/internal/recorder"
)

var (
	ErrQueueExists     = errors.New("queue already exists")
	ErrInvalidName     = errors.New("queue name must not be empty")
	ErrInvalidInterval = errors.New("interval must be at least one day")
	ErrInvalidIncome   = errors.New("income amount must not be negative")
	ErrNotImplemented  = errors.New("not implemented")
)

// Manager runs one load → mutate → save cycle per operation against the
// state file. There is no file locking: two processes racing on the same file
// lose the earlier write.
type Manager struct {
	filePath string
	now      func() time.Time
	rng      purchase.Source
	recorder recorder.Recorder
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSource replaces the random source used by Bump.
func WithSource(src purchase.Source) Option {
	return func(m *Manager) { m.rng = src }
}

// WithRecorder sets the history recorder.
func WithRecorder(rec recorder.Recorder) Option {
	return func(m *Manager) { m.recorder = rec }
}

// NewManager creates a Manager for the state file at filePath.
func NewManager(filePath string, opts ...Option) *Manager {
	m := &Manager{
		filePath: filePath,
		now:      time.Now,
		rng:      purchase.NewSource(),
		recorder: recorder.NewNoopRecorder(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FilePath returns the state file location.
func (m *Manager) FilePath() string { return m.filePath }

// load reads the state. A document in a legacy schema is upgraded and
// written back once before anything else happens.
func (m *Manager) load() (*model.State, error) {
	state, res, err := LoadState(m.filePath, m.now())
	if err != nil {
		return nil, err
	}
	if res.Created {
		log.Warn().Str("path", m.filePath).Msg("no state file, continuing with default; adjust the income with `sq budget`")
	}
	if res.Migrated != "" {
		if err := SaveState(m.filePath, state); err != nil {
			return nil, fmt.Errorf("save migrated state: %w", err)
		}
		log.Info().Str("from", res.Migrated).Msg("migrated state file to current format")
	}
	return state, nil
}

// update loads, applies fn and saves. Domain rejections from fn still save,
// so accrual write-back done before the rejection is kept.
func (m *Manager) update(fn func(*model.State) error) error {
	state, err := m.load()
	if err != nil {
		return err
	}
	fnErr := fn(state)
	if fnErr != nil && !purchase.IsRejection(fnErr) {
		return fnErr
	}
	if err := SaveState(m.filePath, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return fnErr
}

// updateSelected runs fn on the selected queue and stores it back by name.
func (m *Manager) updateSelected(fn func(*model.Queue) error) error {
	return m.update(func(s *model.State) error {
		q, err := s.Selected()
		if err != nil {
			return err
		}
		fnErr := fn(q)
		s.Put(q)
		return fnErr
	})
}

// updateAccrued brings the selected queue up to now before fn runs. Time
// spent under a global pause is skipped, never credited.
func (m *Manager) updateAccrued(now time.Time, fn func(*model.Queue) error) error {
	return m.update(func(s *model.State) error {
		q, err := s.Selected()
		if err != nil {
			return err
		}
		if s.GloballyPaused {
			calculator.Advance(q, now)
		} else {
			calculator.Apply(q, now)
		}
		fnErr := fn(q)
		s.Put(q)
		return fnErr
	})
}

func (m *Manager) record(what string, fn func() error) {
	if err := fn(); err != nil {
		log.Error().Err(err).Str("event", what).Msg("record history")
	}
}

// StatusReport is the outcome of Status.
type StatusReport struct {
	GloballyPaused bool
	Queue          string
	Paused         bool
	Income         model.Income
	Balance        model.Money
	Head           *model.Item
	Purchasable    bool
	Pending        int
}

// Status accrues the selected queue up to now, persists it and reports the
// balance and head item. While globally paused it neither recalculates nor
// writes.
func (m *Manager) Status() (StatusReport, error) {
	state, err := m.load()
	if err != nil {
		return StatusReport{}, err
	}
	if state.GloballyPaused {
		return StatusReport{GloballyPaused: true}, nil
	}

	q, err := state.Selected()
	if err != nil {
		return StatusReport{}, err
	}
	calculator.Apply(q, m.now())
	state.Put(q)
	if err := SaveState(m.filePath, state); err != nil {
		return StatusReport{}, fmt.Errorf("save state: %w", err)
	}

	rep := StatusReport{
		Queue:       q.Name,
		Paused:      q.Paused,
		Income:      q.Income,
		Balance:     q.CurrentBalance,
		Purchasable: purchase.Purchasable(q),
		Pending:     len(q.FuturePurchases),
	}
	if head, ok := purchase.Head(q); ok {
		rep.Head = &head
	}
	return rep, nil
}

// SetBudget changes the selected queue's income. The old rate is accrued up
// to now first, so the new rate never applies retroactively.
func (m *Manager) SetBudget(amount float64, intervalInDays uint64) error {
	if intervalInDays == 0 {
		return ErrInvalidInterval
	}
	if amount < 0 {
		return ErrInvalidIncome
	}
	now := m.now()
	var queue string
	err := m.updateAccrued(now, func(q *model.Queue) error {
		q.Income = model.Income{Amount: amount, IntervalInDays: intervalInDays}
		queue = q.Name
		return nil
	})
	if err != nil {
		return err
	}
	m.record(recorder.KindBudget, func() error {
		return m.recorder.RecordBudget(&recorder.BudgetEvent{
			Queue: queue, Amount: amount, IntervalInDays: intervalInDays, At: now,
		})
	})
	return nil
}

// Add queues item on the selected queue.
func (m *Manager) Add(item model.Item, prepend bool) error {
	return m.updateSelected(func(q *model.Queue) error {
		return purchase.Add(q, item, prepend)
	})
}

// Delete discards the selected queue's head item.
func (m *Manager) Delete() (model.Item, error) {
	var deleted model.Item
	err := m.updateSelected(func(q *model.Queue) error {
		var err error
		deleted, err = purchase.DeleteHead(q)
		return err
	})
	return deleted, err
}

// BumpResult describes a bump.
type BumpResult struct {
	Item     model.Item
	Position int
	NewHead  model.Item
}

// Bump moves the head item back to a random later position.
func (m *Manager) Bump() (BumpResult, error) {
	var res BumpResult
	err := m.updateSelected(func(q *model.Queue) error {
		head, _ := purchase.Head(q)
		pos, err := purchase.BumpHead(q, m.rng)
		if err != nil {
			return err
		}
		res = BumpResult{Item: head, Position: pos, NewHead: q.FuturePurchases[0]}
		return nil
	})
	return res, err
}

// PriceConfirmer lets the operator confirm or correct the listed price of
// the item about to be bought.
type PriceConfirmer func(head model.Item, balance model.Money) (model.Money, error)

// BuyRequest holds the options of a purchase.
type BuyRequest struct {
	// Price overrides the listed price when set.
	Price *model.Money
	// Confirm is asked for the actual price when Price is nil.
	Confirm PriceConfirmer
	Force   bool
}

// BuyResult is a completed purchase.
type BuyResult struct {
	Queue   string
	Item    model.Item
	Balance model.Money
}

// Buy accrues the selected queue and buys its head item. The state is
// durable when Buy returns, so any follow-up action (opening the link) can
// fail without masking the purchase. A rejection still persists the accrual.
func (m *Manager) Buy(req BuyRequest) (BuyResult, error) {
	now := m.now()
	var res BuyResult
	err := m.updateAccrued(now, func(q *model.Queue) error {
		head, ok := purchase.Head(q)
		if !ok {
			return purchase.ErrEmptyQueue
		}
		cost := head.Amount
		switch {
		case req.Price != nil:
			cost = *req.Price
		case req.Confirm != nil:
			confirmed, err := req.Confirm(head, q.CurrentBalance)
			if err != nil {
				return fmt.Errorf("confirm price: %w", err)
			}
			cost = confirmed
		}

		bought, err := purchase.Buy(q, cost, req.Force, now)
		if err != nil {
			return err
		}
		res = BuyResult{Queue: q.Name, Item: bought, Balance: q.CurrentBalance}
		return nil
	})
	if err != nil {
		return res, err
	}
	m.record(recorder.KindPurchase, func() error {
		return m.recorder.RecordPurchase(&recorder.PurchaseEvent{
			Queue: res.Queue, Item: res.Item.Name, Cost: res.Item.Amount,
			Forced: req.Force, BalanceAfter: res.Balance, At: now,
		})
	})
	return res, nil
}

// Peek returns the head item and its link. It never writes the state and
// skips the affordability check.
func (m *Manager) Peek() (model.Item, string, error) {
	state, err := m.load()
	if err != nil {
		return model.Item{}, "", err
	}
	q, err := state.Selected()
	if err != nil {
		return model.Item{}, "", err
	}
	return purchase.Peek(q)
}

// Selected returns the selected queue as stored, without accruing.
func (m *Manager) Selected() (*model.Queue, error) {
	state, err := m.load()
	if err != nil {
		return nil, err
	}
	return state.Selected()
}

// Pause sets the directory-wide pause. Every queue is accrued up to now
// first; pausing an already paused directory changes nothing.
func (m *Manager) Pause() error {
	now := m.now()
	changed := false
	err := m.update(func(s *model.State) error {
		if s.GloballyPaused {
			return nil
		}
		for _, q := range s.Queues {
			calculator.Apply(q, now)
		}
		s.GloballyPaused = true
		changed = true
		return nil
	})
	if err == nil && changed {
		m.recordQueueEvent(recorder.KindPause, "", now)
	}
	return err
}

// Unpause clears the directory-wide pause. Every queue's last calculation
// moves to now without credit, so the paused span is never earned.
func (m *Manager) Unpause() error {
	now := m.now()
	changed := false
	err := m.update(func(s *model.State) error {
		if !s.GloballyPaused {
			return nil
		}
		for _, q := range s.Queues {
			calculator.Advance(q, now)
		}
		s.GloballyPaused = false
		changed = true
		return nil
	})
	if err == nil && changed {
		m.recordQueueEvent(recorder.KindUnpause, "", now)
	}
	return err
}

// PauseQueue pauses only the selected queue.
func (m *Manager) PauseQueue() error {
	return m.setQueuePaused(true)
}

// UnpauseQueue resumes the selected queue. Time spent paused is not credited.
func (m *Manager) UnpauseQueue() error {
	return m.setQueuePaused(false)
}

func (m *Manager) setQueuePaused(paused bool) error {
	now := m.now()
	var queue string
	err := m.updateAccrued(now, func(q *model.Queue) error {
		q.Paused = paused
		queue = q.Name
		return nil
	})
	if err != nil {
		return err
	}
	kind := recorder.KindUnpause
	if paused {
		kind = recorder.KindPause
	}
	m.recordQueueEvent(kind, queue, now)
	return nil
}

func (m *Manager) recordQueueEvent(kind, queue string, at time.Time) {
	m.record(kind, func() error {
		return m.recorder.RecordQueueEvent(&recorder.QueueEvent{Kind: kind, Queue: queue, At: at})
	})
}

// NewQueue creates an empty queue with the default income. The selection
// does not change.
func (m *Manager) NewQueue(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	now := m.now()
	err := m.update(func(s *model.State) error {
		if _, exists := s.Queues[name]; exists {
			return fmt.Errorf("%w: %q", ErrQueueExists, name)
		}
		s.Put(model.NewQueue(name, now))
		return nil
	})
	if err != nil {
		return err
	}
	m.recordQueueEvent(recorder.KindQueueCreated, name, now)
	return nil
}

// SelectQueue has no defined behaviour yet.
func (m *Manager) SelectQueue(name string) error {
	return fmt.Errorf("select queue %q: %w", name, ErrNotImplemented)
}

// QueueSummary is one line of the queue directory listing.
type QueueSummary struct {
	Name     string
	Selected bool
	Paused   bool
	Balance  model.Money
	Pending  int
	Income   model.Income
}

// Queues lists every queue by name, without accruing.
func (m *Manager) Queues() ([]QueueSummary, bool, error) {
	state, err := m.load()
	if err != nil {
		return nil, false, err
	}
	out := make([]QueueSummary, 0, len(state.Queues))
	for _, name := range state.Names() {
		q := state.Queues[name]
		out = append(out, QueueSummary{
			Name:     name,
			Selected: name == state.CurrentlySelected,
			Paused:   q.Paused,
			Balance:  q.CurrentBalance,
			Pending:  len(q.FuturePurchases),
			Income:   q.Income,
		})
	}
	return out, state.GloballyPaused, nil
}

// History returns the most recent recorded events.
func (m *Manager) History(limit int) ([]recorder.Event, error) {
	return m.recorder.Recent(limit)
}
