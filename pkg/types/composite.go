package types

import (
	"errors"
	"fmt"
	"strings"
)

// Helpers for reading and writing Postgres composite literals,
// the `(a,"b, c",NULL)` syntax used by the address_t column type.

var errCompositeFieldCount = errors.New("composite: unexpected field count")

func quoteCompositeString(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

func quoteCompositeNullable(value *string) string {
	if value == nil {
		return "NULL"
	}
	return quoteCompositeString(*value)
}

func isCompositeNull(value string) bool {
	return strings.EqualFold(value, "NULL")
}

// parseComposite splits a composite literal into its raw fields,
// honoring quoting and backslash escapes. When expected is positive the
// field count is checked against it.
func parseComposite(raw string, expected int) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '(' || raw[len(raw)-1] != ')' {
		return nil, fmt.Errorf("composite: invalid format %q", raw)
	}

	var (
		fields   []string
		current  strings.Builder
		quoted   bool
		escaping bool
	)
	for _, ch := range []byte(raw[1 : len(raw)-1]) {
		switch {
		case escaping:
			current.WriteByte(ch)
			escaping = false
		case ch == '\\':
			escaping = true
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())

	if expected > 0 && len(fields) != expected {
		return nil, fmt.Errorf("%w: got %d expected %d", errCompositeFieldCount, len(fields), expected)
	}
	return fields, nil
}

func newCompositeNullable(value string) *string {
	if isCompositeNull(value) {
		return nil
	}
	result := value
	return &result
}
