package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultQueueName names the queue created on first run.
const DefaultQueueName = "default"

var (
	// ErrSelectionMissing means currently_selected names no queue. The state
	// file has to be fixed by hand.
	ErrSelectionMissing = errors.New("selected queue does not exist")
	// ErrDuplicateQueue means a document lists the same queue name twice.
	ErrDuplicateQueue = errors.New("duplicate queue name")
)

// State is the whole persisted document: every queue keyed by name, the
// selected queue and the directory-wide pause flag.
type State struct {
	Queues            map[string]*Queue
	CurrentlySelected string
	GloballyPaused    bool
}

// DefaultState is the first-run state: one "default" queue, selected.
func DefaultState(now time.Time) *State {
	q := NewQueue(DefaultQueueName, now)
	return &State{
		Queues:            map[string]*Queue{q.Name: q},
		CurrentlySelected: q.Name,
	}
}

// Selected resolves currently_selected.
func (s *State) Selected() (*Queue, error) {
	q, ok := s.Queues[s.CurrentlySelected]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSelectionMissing, s.CurrentlySelected)
	}
	return q, nil
}

// Put stores q under its name, replacing any queue with the same name.
func (s *State) Put(q *Queue) {
	if s.Queues == nil {
		s.Queues = make(map[string]*Queue)
	}
	s.Queues[q.Name] = q
}

// Names returns queue names in sorted order.
func (s *State) Names() []string {
	names := make([]string, 0, len(s.Queues))
	for name := range s.Queues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type stateDocument struct {
	Queues            []*Queue `json:"queues"`
	CurrentlySelected string   `json:"currently_selected"`
	GloballyPaused    bool     `json:"globally_paused"`
}

// MarshalJSON writes queues as an array sorted by name.
func (s *State) MarshalJSON() ([]byte, error) {
	doc := stateDocument{
		Queues:            make([]*Queue, 0, len(s.Queues)),
		CurrentlySelected: s.CurrentlySelected,
		GloballyPaused:    s.GloballyPaused,
	}
	for _, name := range s.Names() {
		doc.Queues = append(doc.Queues, s.Queues[name])
	}
	return json.Marshal(doc)
}

// UnmarshalJSON is strict: unknown fields and a missing queues array are
// errors, so documents in another schema are never half-read.
func (s *State) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc stateDocument
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if doc.Queues == nil {
		return errors.New("missing queues")
	}

	queues := make(map[string]*Queue, len(doc.Queues))
	for _, q := range doc.Queues {
		if q == nil {
			return errors.New("null queue entry")
		}
		if _, dup := queues[q.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateQueue, q.Name)
		}
		if q.FuturePurchases == nil {
			q.FuturePurchases = []Item{}
		}
		if q.PastPurchases == nil {
			q.PastPurchases = []Item{}
		}
		queues[q.Name] = q
	}

	s.Queues = queues
	s.CurrentlySelected = doc.CurrentlySelected
	s.GloballyPaused = doc.GloballyPaused
	return nil
}
