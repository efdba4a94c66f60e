package config

import (
	"os"
	"strings"
)

const (
	SinkFile = "file"
	SinkDB   = "db"
)

// AuditSinkEnabled reports whether a mismatch sink is switched on.
//
// Set via env:
// - AUDIT_SINKS="file,db" (default "file")
//
// Sink names are case-insensitive.
func AuditSinkEnabled(sink string) bool {
	raw := os.Getenv("AUDIT_SINKS")
	if strings.TrimSpace(raw) == "" {
		raw = SinkFile
	}
	return listContains(raw, sink)
}

// AuditModuleEnabled restricts a run to a subset of the audit modules.
//
// Set via env:
// - AUDIT_MODULES="penjualan,pembelian" (empty = every module)
func AuditModuleEnabled(module string) bool {
	raw := os.Getenv("AUDIT_MODULES")
	if strings.TrimSpace(raw) == "" {
		return true
	}
	return listContains(raw, module)
}

func listContains(csv string, item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" {
		return false
	}
	for _, part := range strings.Split(csv, ",") {
		if strings.ToLower(strings.TrimSpace(part)) == item {
			return true
		}
	}
	return false
}
