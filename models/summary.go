package models

import (
	"encoding/json"
	"sort"
)

const SummaryTotalKey = "total_mismatch"

// Summary is the per-domain mismatch count of one audit date, serialized flat as
// {"<domain>": n, ..., "total_mismatch": N}.
type Summary struct {
	Counts map[string]int
	Total  int
}

func NewSummary(counts map[string]int) Summary {
	s := Summary{Counts: make(map[string]int, len(counts))}
	for domain, n := range counts {
		s.Counts[domain] = n
		s.Total += n
	}
	return s
}

// Domains returns the counted domains in name order.
func (s Summary) Domains() []string {
	domains := make([]string, 0, len(s.Counts))
	for d := range s.Counts {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

func (s Summary) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(s.Counts)+1)
	for k, v := range s.Counts {
		out[k] = v
	}
	out[SummaryTotalKey] = s.Total
	return json.Marshal(out)
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var flat map[string]int
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	total, hasTotal := flat[SummaryTotalKey]
	delete(flat, SummaryTotalKey)
	*s = NewSummary(flat)
	if hasTotal {
		s.Total = total
	}
	return nil
}
