// Package number formats and parses sequential invoice numbers.
//
// An invoice number is the customer-facing identifier: a constant prefix,
// a dash, and a zero-padded counter ("INV-00001"). The counter itself is
// allocated atomically by the store; this package only deals with the
// textual form.
package number

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPrefix and DefaultWidth produce numbers like "INV-00001".
const (
	DefaultPrefix = "INV"
	DefaultWidth  = 5
)

// Format describes the fixed textual layout of invoice numbers.
type Format struct {
	Prefix string
	Width  int // minimum digits; the field widens past 10^Width-1, never truncates
}

// Default is the format used when none is configured.
var Default = Format{Prefix: DefaultPrefix, Width: DefaultWidth}

// Apply renders a counter value: Format{"INV", 5}.Apply(42) == "INV-00042".
// Counters wider than Width widen the field: Apply(123456) == "INV-123456".
func (f Format) Apply(n int64) string {
	return fmt.Sprintf("%s-%0*d", f.Prefix, f.Width, n)
}

// Parse extracts the counter value from a formatted number, validating
// the prefix.
func (f Format) Parse(s string) (int64, error) {
	rest, ok := strings.CutPrefix(s, f.Prefix+"-")
	if !ok {
		return 0, fmt.Errorf("number: %q does not have prefix %q", s, f.Prefix)
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("number: parse %q: %w", s, err)
	}
	return n, nil
}
