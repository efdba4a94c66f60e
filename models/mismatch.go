package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reasons shared by every domain.
const (
	ReasonCashNotFound    = "cash entry not found"
	ReasonAmountInDiffer  = "jumlah_in mismatch"
	ReasonAmountOutDiffer = "jumlah_out mismatch"
)

const (
	mismatchKeyTime     = "waktu"
	mismatchKeyDomain   = "kategori"
	mismatchKeyReason   = "reason"
	mismatchKeyExpected = "expected"
	mismatchKeyFound    = "found"
	mismatchKeyDetail   = "detail"
)

// Mismatch is one detected divergence. Reason is always set; Expected, Found and Detail carry
// whatever shape the validator produced and Context holds domain specific keys (kode_barcode,
// no_faktur_group, ...) that are flattened into the JSON object next to the fixed ones.
type Mismatch struct {
	Timestamp time.Time
	Domain    string
	Reason    string
	Expected  any
	Found     any
	Detail    any
	Context   map[string]any
}

// With returns a copy of m carrying an extra context key.
func (m Mismatch) With(key string, value any) Mismatch {
	ctx := make(map[string]any, len(m.Context)+1)
	for k, v := range m.Context {
		ctx[k] = v
	}
	ctx[key] = value
	m.Context = ctx
	return m
}

func (m Mismatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Context)+6)
	for k, v := range m.Context {
		out[k] = v
	}
	out[mismatchKeyTime] = m.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	out[mismatchKeyDomain] = m.Domain
	out[mismatchKeyReason] = m.Reason
	if m.Expected != nil {
		out[mismatchKeyExpected] = m.Expected
	}
	if m.Found != nil {
		out[mismatchKeyFound] = m.Found
	}
	if m.Detail != nil {
		out[mismatchKeyDetail] = m.Detail
	}
	return json.Marshal(out)
}

func (m *Mismatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Mismatch
	for k, v := range raw {
		switch k {
		case mismatchKeyTime:
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("mismatch %s: %w", k, err)
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return fmt.Errorf("mismatch %s: %w", k, err)
			}
			decoded.Timestamp = ts
		case mismatchKeyDomain:
			if err := json.Unmarshal(v, &decoded.Domain); err != nil {
				return fmt.Errorf("mismatch %s: %w", k, err)
			}
		case mismatchKeyReason:
			if err := json.Unmarshal(v, &decoded.Reason); err != nil {
				return fmt.Errorf("mismatch %s: %w", k, err)
			}
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("mismatch %s: %w", k, err)
			}
			switch k {
			case mismatchKeyExpected:
				decoded.Expected = val
			case mismatchKeyFound:
				decoded.Found = val
			case mismatchKeyDetail:
				decoded.Detail = val
			default:
				if decoded.Context == nil {
					decoded.Context = map[string]any{}
				}
				decoded.Context[k] = val
			}
		}
	}
	*m = decoded
	return nil
}
