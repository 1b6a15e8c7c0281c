package fund

import (
	"bytes"
	"encoding/json"
	"errors"

	"SpendQueue/internal/model"
)

// singleQueueState is the schema used before multiple queues existed.
type singleQueueState struct {
	Income          *model.Income    `json:"income"`
	LastCalculation *model.Timestamp `json:"last_calculation"`
	CurrentAmount   *model.Money     `json:"current_amount"`
	FuturePurchases []model.Item     `json:"future_purchases"`
	PastPurchases   []model.Item     `json:"past_purchases"`
	Paused          *bool            `json:"paused"`
}

// decodeSingleQueue maps the old document onto one "default" queue. Nothing
// is dropped: unknown fields fail the decode instead.
func decodeSingleQueue(data []byte) (*model.State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var old singleQueueState
	if err := dec.Decode(&old); err != nil {
		return nil, err
	}
	if old.Income == nil || old.LastCalculation == nil || old.CurrentAmount == nil {
		return nil, errors.New("missing income, last_calculation or current_amount")
	}

	q := &model.Queue{
		Income:          *old.Income,
		Name:            model.DefaultQueueName,
		LastCalculation: *old.LastCalculation,
		CurrentBalance:  *old.CurrentAmount,
		FuturePurchases: old.FuturePurchases,
		PastPurchases:   old.PastPurchases,
	}
	if q.FuturePurchases == nil {
		q.FuturePurchases = []model.Item{}
	}
	if q.PastPurchases == nil {
		q.PastPurchases = []model.Item{}
	}
	if old.Paused != nil {
		q.Paused = *old.Paused
	}

	return &model.State{
		Queues:            map[string]*model.Queue{q.Name: q},
		CurrentlySelected: q.Name,
	}, nil
}
