package recorder

// NoopRecorder is used when no history database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPurchase(_ *PurchaseEvent) error { return nil }
func (n *NoopRecorder) RecordBudget(_ *BudgetEvent) error     { return nil }
func (n *NoopRecorder) RecordQueueEvent(_ *QueueEvent) error  { return nil }
func (n *NoopRecorder) Recent(_ int) ([]Event, error)         { return nil, nil }
func (n *NoopRecorder) Close() error                          { return nil }
