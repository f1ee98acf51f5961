// Package registry resolves symbol codes to display names from the
// stock_names.csv snapshot. Loaded once before scanning; a missing or
// corrupt file is fatal at startup.
package registry

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// UnknownName is returned for codes absent from the registry.
const UnknownName = "未知"

// Registry is a read-only code to display-name map, safe to share
// across all workers.
type Registry struct {
	names map[string]string
}

// New builds a registry from an in-memory map.
func New(names map[string]string) *Registry {
	return &Registry{names: names}
}

// Load reads the registry CSV (columns code,name; Chinese headers
// 代码/名称 also accepted).
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open name registry %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse name registry %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("name registry %s has no entries", path)
	}

	codeIdx, nameIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "code", "代码":
			codeIdx = i
		case "name", "名称":
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("name registry %s: code/name columns not found", path)
	}

	names := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		if codeIdx >= len(row) || nameIdx >= len(row) {
			continue
		}
		code := normalizeCode(strings.TrimSpace(row[codeIdx]))
		name := strings.TrimSpace(row[nameIdx])
		if code == "" || name == "" {
			continue
		}
		names[code] = name
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("name registry %s has no usable entries", path)
	}

	return &Registry{names: names}, nil
}

// Lookup resolves a code to its display name, or UnknownName.
func (r *Registry) Lookup(code string) string {
	if name, ok := r.names[code]; ok {
		return name
	}
	return UnknownName
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.names) }

// normalizeCode left-pads numeric codes to six digits; exports often
// drop leading zeros on Shenzhen codes.
func normalizeCode(code string) string {
	if code == "" || len(code) >= 6 {
		return code
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return code
		}
	}
	return strings.Repeat("0", 6-len(code)) + code
}
