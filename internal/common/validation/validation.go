// Package validation collects per-field input errors so a request gets one
// response listing everything wrong, not a field-by-field round trip.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError maps field name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "campos invalidos: " + strings.Join(names, ", ")
}

// Collector accumulates field errors during request validation.
type Collector struct {
	fields map[string]string
}

func NewCollector() *Collector {
	return &Collector{fields: make(map[string]string)}
}

// Add records a failure for a field. The first message per field wins.
func (c *Collector) Add(field, message string) {
	if _, ok := c.fields[field]; !ok {
		c.fields[field] = message
	}
}

// Require checks a mandatory string field, bounded to max characters.
func (c *Collector) Require(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "el campo es obligatorio")
		return
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		c.Add(field, fmt.Sprintf("maximo %d caracteres", max))
	}
}

// Optional bounds a non-mandatory string field.
func (c *Collector) Optional(field, value string, max int) {
	if value != "" && max > 0 && utf8.RuneCountInString(value) > max {
		c.Add(field, fmt.Sprintf("maximo %d caracteres", max))
	}
}

// RequireDate checks a mandatory YYYY-MM-DD field and returns the parsed
// date. The zero time is returned when the field fails.
func (c *Collector) RequireDate(field, value string) time.Time {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "el campo es obligatorio")
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.Add(field, "fecha invalida, formato esperado YYYY-MM-DD")
		return time.Time{}
	}
	return t
}

// RequireID checks a mandatory positive integer reference.
func (c *Collector) RequireID(field string, value int) {
	if value <= 0 {
		c.Add(field, "el campo es obligatorio")
	}
}

// Err returns the accumulated *ValidationError, or nil when everything
// passed.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}
