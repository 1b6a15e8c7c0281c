package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the RFC-2822 form used in the state file.
const TimestampLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp is a second-precision instant stored in RFC-2822 form.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds, the precision of the file format.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// ParseTimestamp parses any of the accepted RFC-2822 variants.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("parse timestamp %q: not RFC 2822", s)
}

func (t Timestamp) String() string {
	return t.Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
