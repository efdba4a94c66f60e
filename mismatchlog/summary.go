package mismatchlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nagatech/daily_audit/models"
)

var ErrInvalidDomain = errors.New("mismatchlog: invalid domain name")

// BuildSummary counts the entries of every per-domain log in dir. The aggregate log and the
// summary itself are never counted.
func BuildSummary(dir string) (models.Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.Summary{}, err
	}
	counts := map[string]int{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || name == AggregateFile || name == SummaryFile {
			continue
		}
		var list []json.RawMessage
		if err := readJSON(filepath.Join(dir, name), &list); err != nil {
			return models.Summary{}, err
		}
		counts[strings.TrimSuffix(name, ".json")] = len(list)
	}
	return models.NewSummary(counts), nil
}

func WriteSummary(dir string, summary models.Summary) error {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, SummaryFile), out, 0o644)
}

// ReadSummary prefers summary.json and rebuilds it from the logs when it is missing.
func ReadSummary(dir string) (models.Summary, error) {
	var s models.Summary
	err := readJSON(filepath.Join(dir, SummaryFile), &s)
	if errors.Is(err, os.ErrNotExist) {
		return BuildSummary(dir)
	}
	return s, err
}

// ReadMismatches loads the log of one domain, or the aggregate log when domain is empty.
func ReadMismatches(dir, domain string) ([]models.Mismatch, error) {
	name := AggregateFile
	if domain != "" {
		if domain != filepath.Base(domain) || strings.HasPrefix(domain, ".") || domain+".json" == SummaryFile {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
		}
		name = domain + ".json"
	}
	var out []models.Mismatch
	err := readJSON(filepath.Join(dir, name), &out)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Mismatch{}, nil
	}
	return out, err
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
