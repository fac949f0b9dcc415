package repocache

import (
	"encoding/json"
	"fmt"
	"time"
)

// timeoutField is the reserved row field holding the expiry as unix seconds.
const timeoutField = "timeout"

// Record is a fresh cache row for one repository.
type Record struct {
	// Key is the option key the row is stored under.
	Key string `json:"key"`

	// Fields holds every data field of the row except the timeout.
	Fields map[string]json.RawMessage `json:"fields"`

	// ExpiresAt is when the row stops being fresh.
	ExpiresAt time.Time `json:"expires_at"`
}

// Has reports whether the record carries the field id.
func (r *Record) Has(id string) bool {
	_, ok := r.Fields[id]
	return ok
}

// Field returns the raw JSON of field id.
func (r *Record) Field(id string) (json.RawMessage, bool) {
	v, ok := r.Fields[id]
	return v, ok
}

// Decode unmarshals field id into v.
func (r *Record) Decode(id string, v any) error {
	raw, ok := r.Fields[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding cache field %s: %w", id, err)
	}
	return nil
}

// TimeUntilExpiration returns the remaining lifetime at now, or 0 once expired.
func (r *Record) TimeUntilExpiration(now time.Time) time.Duration {
	remaining := r.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// row is the decoded form of a stored option value.
type row struct {
	fields  map[string]json.RawMessage
	timeout int64
	hasTTL  bool
}

// decodeRow parses a stored option value. Rows that are not JSON objects
// decode to an empty row.
func decodeRow(data []byte) row {
	r := row{fields: make(map[string]json.RawMessage)}
	if len(data) == 0 {
		return r
	}
	if err := json.Unmarshal(data, &r.fields); err != nil || r.fields == nil {
		r.fields = make(map[string]json.RawMessage)
		return r
	}
	if raw, ok := r.fields[timeoutField]; ok {
		delete(r.fields, timeoutField)
		var ts float64
		if err := json.Unmarshal(raw, &ts); err == nil && ts > 0 {
			r.timeout = int64(ts)
			r.hasTTL = true
		}
	}
	return r
}

// encode renders the row back to its stored JSON form.
func (r row) encode() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.fields)+1)
	for k, v := range r.fields {
		out[k] = v
	}
	ts, err := json.Marshal(r.timeout)
	if err != nil {
		return nil, err
	}
	out[timeoutField] = ts
	return json.Marshal(out)
}
