package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// RecencyMarker is an optional explicit "last touched" value such as tt_pindah_detail.input_date.
// The POS has written it both as a BSON date and as an ISO string over the years; a missing
// marker sorts before any present one.
type RecencyMarker struct {
	Set  bool
	Time time.Time
	Text string
}

func (m *RecencyMarker) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*m = RecencyMarker{}
	case bsontype.DateTime:
		*m = RecencyMarker{Set: true, Time: rv.Time().UTC()}
	case bsontype.String:
		s := rv.StringValue()
		*m = RecencyMarker{Set: true, Text: s}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			m.Time = parsed.UTC()
		}
	case bsontype.Int32, bsontype.Int64, bsontype.Double:
		ms, ok := rv.AsInt64OK()
		if !ok {
			return fmt.Errorf("input_date: cannot read %s as epoch millis", t)
		}
		*m = RecencyMarker{Set: true, Time: time.UnixMilli(ms).UTC()}
	default:
		return fmt.Errorf("input_date: unsupported bson type %s", t)
	}
	return nil
}

func (m RecencyMarker) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch {
	case !m.Set:
		return bson.MarshalValue(nil)
	case m.Text != "":
		return bson.MarshalValue(m.Text)
	default:
		return bson.MarshalValue(m.Time)
	}
}

func (m RecencyMarker) MarshalJSON() ([]byte, error) {
	switch {
	case !m.Set:
		return []byte("null"), nil
	case m.Text != "":
		return json.Marshal(m.Text)
	default:
		return json.Marshal(m.Time)
	}
}

// Compare orders markers: -1 when m is older than o, 1 when newer, 0 when equal.
func (m RecencyMarker) Compare(o RecencyMarker) int {
	if m.Set != o.Set {
		if m.Set {
			return 1
		}
		return -1
	}
	if !m.Set {
		return 0
	}
	if !m.Time.IsZero() && !o.Time.IsZero() {
		return m.Time.Compare(o.Time)
	}
	a, b := m.sortText(), o.sortText()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m RecencyMarker) sortText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Time.Format(time.RFC3339Nano)
}
