package search

import (
	"bytes"
	"encoding/json"
	"time"
)

// Context is the immutable query a session paginates. Two contexts are
// the same search only when Equal reports true.
type Context struct {
	Query    string     `json:"query,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Archived *bool      `json:"archived,omitempty"`
	FreeOnly bool       `json:"freeOnly"`
}

// UnmarshalJSON decodes a context, defaulting FreeOnly to true when the
// field is absent.
func (c *Context) UnmarshalJSON(data []byte) error {
	type plain Context
	v := plain{FreeOnly: true}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*c = Context(v)
	return nil
}

// Equal compares every field, treating nil and non-nil optionals as different.
func (c Context) Equal(o Context) bool {
	if c.Query != o.Query || c.FreeOnly != o.FreeOnly {
		return false
	}

	switch {
	case c.Since == nil && o.Since == nil:
	case c.Since == nil || o.Since == nil:
		return false
	case !c.Since.Equal(*o.Since):
		return false
	}

	switch {
	case c.Archived == nil && o.Archived == nil:
	case c.Archived == nil || o.Archived == nil:
		return false
	case *c.Archived != *o.Archived:
		return false
	}

	return true
}
