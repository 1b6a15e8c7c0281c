package fund

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpendQueue/internal/model"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

const legacyDoc = `{
  "income": {"amount": 100.0, "interval_in_days": 30},
  "last_calculation": "Tue, 1 Jul 2003 10:52:37 +0200",
  "current_amount": "12.5",
  "future_purchases": [
    {"name": "Book", "amount": "20", "purchase_link": "https://example.com/book", "time_purchased": null}
  ],
  "past_purchases": [
    {"name": "Pen", "amount": 2.5, "purchase_link": null, "time_purchased": "Mon, 30 Jun 2003 09:00:00 +0200"}
  ],
  "paused": true
}`

func TestLoadState_MissingFileGivesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	state, res, err := LoadState(path, t0)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Empty(t, res.Migrated)

	q, err := state.Selected()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultQueueName, q.Name)
	assert.True(t, q.LastCalculation.Equal(t0))
}

func TestSaveState_RoundTripAndCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	path := filepath.Join(dir, "state.json")

	state := model.DefaultState(t0)
	state.Put(model.NewQueue("books", t0))
	state.GloballyPaused = true
	require.NoError(t, SaveState(path, state))

	got, res, err := LoadState(path, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Empty(t, res.Migrated)
	assert.Equal(t, []string{"books", "default"}, got.Names())
	assert.True(t, got.GloballyPaused)
	assert.True(t, got.Queues["books"].LastCalculation.Equal(t0))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestSaveState_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer than needed"), 0o644))

	require.NoError(t, SaveState(path, model.DefaultState(t0)))

	_, _, err := LoadState(path, t0)
	require.NoError(t, err)
}

func TestDecodeState_Legacy(t *testing.T) {
	state, res, err := DecodeState([]byte(legacyDoc))
	require.NoError(t, err)
	assert.Equal(t, "single-queue", res.Migrated)

	q, err := state.Selected()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultQueueName, q.Name)
	assert.Equal(t, model.Income{Amount: 100, IntervalInDays: 30}, q.Income)
	assert.True(t, q.CurrentBalance.Equal(model.NewMoney(125, -1)))
	assert.True(t, q.Paused)
	assert.Equal(t, int64(1057049557), q.LastCalculation.Unix())
	require.Len(t, q.FuturePurchases, 1)
	assert.Equal(t, "https://example.com/book", q.FuturePurchases[0].Link())
	require.Len(t, q.PastPurchases, 1)
	assert.True(t, q.PastPurchases[0].Amount.Equal(model.NewMoney(25, -1)))
	assert.True(t, q.PastPurchases[0].Bought())
}

func TestDecodeState_LegacyWithoutPaused(t *testing.T) {
	doc := `{"income":{"amount":1,"interval_in_days":1},"last_calculation":"Tue, 5 Mar 2024 10:00:00 +0000","current_amount":0,"future_purchases":[],"past_purchases":[]}`
	state, res, err := DecodeState([]byte(doc))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Migrated)
	assert.False(t, state.Queues[model.DefaultQueueName].Paused)
}

// Documents written by the original tool carry amounts as fraction tuples.
const fractionDoc = `{
  "queues": [{
    "income": {"amount": 30.0, "interval_in_days": 30},
    "name": "default",
    "last_calculation": "Wed, 1 May 2024 11:00:00 +0200",
    "current_balance": [{"Rational":["Plus",[25,10]]},1],
    "future_purchases": [
      {"name": "Novel", "amount": [{"Rational":["Plus",[1999,100]]},2], "purchase_link": null, "time_purchased": null}
    ],
    "past_purchases": [],
    "paused": false
  }],
  "currently_selected": "default",
  "globally_paused": false
}`

const legacyFractionDoc = `{
  "income": {"amount": 1.0, "interval_in_days": 1},
  "last_calculation": "Wed, 1 May 2024 11:00:00 +0200",
  "current_amount": [{"Rational":["Plus",[1,3]]},4],
  "future_purchases": [],
  "past_purchases": [
    {"name": "Pen", "amount": [{"Rational":["Plus",[5,2]]},1], "purchase_link": null, "time_purchased": "Tue, 30 Apr 2024 09:00:00 +0200"}
  ]
}`

func TestDecodeState_FractionAmounts(t *testing.T) {
	state, res, err := DecodeState([]byte(fractionDoc))
	require.NoError(t, err)
	assert.Empty(t, res.Migrated)

	q := state.Queues[model.DefaultQueueName]
	require.NotNil(t, q)
	assert.True(t, q.CurrentBalance.Equal(model.NewMoney(25, -1)))
	require.Len(t, q.FuturePurchases, 1)
	assert.True(t, q.FuturePurchases[0].Amount.Equal(model.NewMoney(1999, -2)))
	assert.True(t, q.LastCalculation.Equal(t0))
}

func TestLoadState_MigratesLegacyFractionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyFractionDoc), 0o644))

	state, res, err := LoadState(path, t0)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Migrated)
	q := state.Queues[model.DefaultQueueName]
	assert.Equal(t, "0.33", q.CurrentBalance.String())
	require.Len(t, q.PastPurchases, 1)
	assert.True(t, q.PastPurchases[0].Amount.Equal(model.NewMoney(25, -1)))

	// Once saved, the file decodes with the current schema.
	require.NoError(t, SaveState(path, state))
	_, res, err = LoadState(path, t0)
	require.NoError(t, err)
	assert.Empty(t, res.Migrated)
}

func TestDecodeState_Corrupted(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":       `{{{`,
		"unknown schema": `{"foo": 1}`,
		"bad timestamp":  `{"queues":[{"name":"a","income":{"amount":1,"interval_in_days":1},"last_calculation":"yesterday","current_balance":"0","future_purchases":[],"past_purchases":[],"paused":false}],"currently_selected":"a","globally_paused":false}`,
		"legacy missing": `{"income":{"amount":1,"interval_in_days":1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeState([]byte(doc))
			assert.True(t, errors.Is(err, ErrCorruptedState), "got %v", err)
		})
	}
}

func TestLoadState_UnreadableIsFatal(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be cannot be read as a file.
	_, _, err := LoadState(dir, t0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCorruptedState))
}
