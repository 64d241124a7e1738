package repositories

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const DefaultSamplesTable = "samples"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName rejects anything that is not a plain SQL identifier.
// Table names are interpolated into queries, so this is the only guard.
func ValidateTableName(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

func tableOrDefault(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultSamplesTable, nil
	}
	if err := ValidateTableName(name); err != nil {
		return "", err
	}
	return name, nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339Nano, time.DateTime}

// Sample dates are stored as text in SQLite.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unsupported format", s)
}

// Builds "?,?,?" for SQLite IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
