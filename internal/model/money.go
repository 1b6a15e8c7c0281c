package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// divisionPrecision is the number of fraction digits kept by Div. Per-second
// income rates are tiny, so this is far above display precision.
const divisionPrecision = 24

// Money is an exact decimal currency amount.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney returns value × 10^exp.
func NewMoney(value int64, exp int32) Money {
	return Money{d: decimal.New(value, exp)}
}

// MoneyFromInt converts a whole number of currency units.
func MoneyFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// MoneyFromFloat converts a user-entered float using its shortest decimal
// representation, so 0.1 becomes exactly 0.1.
func MoneyFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

// ParseMoney parses a decimal string such as "12.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{d: d}, nil
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Mul(o Money) Money { return Money{d: m.d.Mul(o.d)} }

// Div divides, rounding to divisionPrecision fraction digits. Dividing by zero
// yields zero.
func (m Money) Div(o Money) Money {
	if o.d.IsZero() {
		return Zero
	}
	return Money{d: m.d.DivRound(o.d, divisionPrecision)}
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool              { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool           { return m.d.LessThan(o.d) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) IsNegative() bool                { return m.d.IsNegative() }
func (m Money) IsZero() bool                    { return m.d.IsZero() }

// Round returns m rounded half-away-from-zero to places fraction digits.
func (m Money) Round(places int32) Money { return Money{d: m.d.Round(places)} }

// String renders the two-fraction-digit display form.
func (m Money) String() string { return m.d.StringFixed(2) }

// Exact renders the full stored precision.
func (m Money) Exact() string { return m.d.String() }

// Float64 is for reporting only; never feed it back into arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// MarshalJSON writes the exact value as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.d.MarshalJSON()
}

// UnmarshalJSON accepts quoted decimals, bare JSON numbers and the
// [{"Rational":[sign,[numer,denom]]},precision] tuple older state files
// carry.
func (m *Money) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		d, err := decodeFraction(trimmed)
		if err != nil {
			return fmt.Errorf("decode money %s: %w", trimmed, err)
		}
		m.d = d
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.d = d
	return nil
}

var errNotFinite = errors.New("amount is not a finite fraction")

func decodeFraction(data []byte) (decimal.Decimal, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return decimal.Decimal{}, err
	}
	if len(tuple) != 2 {
		return decimal.Decimal{}, fmt.Errorf("want [fraction, precision], got %d elements", len(tuple))
	}
	var precision uint8
	if err := json.Unmarshal(tuple[1], &precision); err != nil {
		return decimal.Decimal{}, fmt.Errorf("precision: %w", err)
	}

	// Infinity and NaN variants decode to something without a Rational key.
	var variant map[string]json.RawMessage
	if err := json.Unmarshal(tuple[0], &variant); err != nil {
		return decimal.Decimal{}, errNotFinite
	}
	raw, ok := variant["Rational"]
	if !ok || len(variant) != 1 {
		return decimal.Decimal{}, errNotFinite
	}

	var rational []json.RawMessage
	if err := json.Unmarshal(raw, &rational); err != nil || len(rational) != 2 {
		return decimal.Decimal{}, errors.New("want [sign, [numer, denom]]")
	}
	var sign string
	if err := json.Unmarshal(rational[0], &sign); err != nil {
		return decimal.Decimal{}, fmt.Errorf("sign: %w", err)
	}
	var ratio [2]json.Number
	if err := json.Unmarshal(rational[1], &ratio); err != nil {
		return decimal.Decimal{}, fmt.Errorf("ratio: %w", err)
	}
	numer, err := decimal.NewFromString(ratio[0].String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("numerator: %w", err)
	}
	denom, err := decimal.NewFromString(ratio[1].String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("denominator: %w", err)
	}
	if denom.IsZero() {
		return decimal.Decimal{}, errNotFinite
	}

	d := numer.DivRound(denom, divisionPrecision)
	switch sign {
	case "Plus":
	case "Minus":
		d = d.Neg()
	default:
		return decimal.Decimal{}, fmt.Errorf("unknown sign %q", sign)
	}
	return d, nil
}
