package models

import (
	"sort"
	"strings"
	"time"
)

// SearchCriteria is the input of a trip search. All three fields are
// required and origin must differ from destination before a request may be
// issued.
type SearchCriteria struct {
	Origin      string
	Destination string
	Date        time.Time
}

func (c SearchCriteria) Validate() error {
	errs := ValidationError{}
	if c.Origin == "" {
		errs["origin"] = "origin is required"
	}
	if c.Destination == "" {
		errs["destination"] = "destination is required"
	}
	if c.Date.IsZero() {
		errs["date"] = "date is required"
	}
	if c.Origin != "" && c.Origin == c.Destination {
		errs["origin"] = "origin and destination cannot be equal"
		errs["destination"] = "origin and destination cannot be equal"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidationError maps each offending field to its message. It is resolved
// locally; no request is sent when validation fails.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}
