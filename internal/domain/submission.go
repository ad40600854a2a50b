package domain

import (
	"context"
	"strings"
)

// Field is one posted form key with every value sent for it, in POST order
type Field struct {
	Key    string
	Values []string
}

// Value joins multi-valued fields with ", "
func (f Field) Value() string {
	return strings.Join(f.Values, ", ")
}

// FieldMap is an ordered set of posted fields. Keys are unique; repeated keys
// accumulate values on the first occurrence.
type FieldMap []Field

// Add appends value under key. Array-style names are folded into their base
// name, so "tags[]", "tags[0]" and "tags" land on the same field.
func (m *FieldMap) Add(key, value string) {
	key = BaseKey(key)
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Values = append((*m)[i].Values, value)
			return
		}
	}
	*m = append(*m, Field{Key: key, Values: []string{value}})
}

// BaseKey cuts an array-style name at its first "[" when a "]" follows it:
// "card-number[0]" and "cvv[a][b]" become "card-number" and "cvv".
func BaseKey(key string) string {
	i := strings.IndexByte(key, '[')
	if i <= 0 || !strings.Contains(key[i+1:], "]") {
		return key
	}
	return key[:i]
}

// Get returns the joined value of key, or "" when absent
func (m FieldMap) Get(key string) string {
	for _, f := range m {
		if f.Key == key {
			return f.Value()
		}
	}
	return ""
}

// RequestMeta describes where a submission came from
type RequestMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

// Submission is one arbitrary form POST to be relayed
type Submission struct {
	Fields FieldMap
	Meta   RequestMeta
}

// SanitizedField is a posted field after key filtering and markup stripping
type SanitizedField struct {
	Key   string
	Value string
}

// SanitizedSubmission holds the forwardable fields. Blocked fields are dropped
// entirely; SensitiveOmitted records that at least one was present.
type SanitizedSubmission struct {
	Fields           []SanitizedField
	SensitiveOmitted bool
}

// DispatchOutcome reports how a relayed message fared.
// Chunks after the first failure are never attempted.
type DispatchOutcome struct {
	OK        bool
	Chunks    int
	Delivered int
	Error     string
}

// Dispatcher delivers pre-chunked message text in order, stopping at the
// first failing chunk. It returns how many chunks were delivered.
type Dispatcher interface {
	Configured() bool
	SendChunks(ctx context.Context, chunks []string) (int, error)
}

// SubmissionUsecase relays a sanitized copy of a form POST
type SubmissionUsecase interface {
	Relay(ctx context.Context, sub *Submission) (*DispatchOutcome, error)
}
