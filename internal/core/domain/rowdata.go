package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RowField is one column of an imported row.
type RowField struct {
	Key   string
	Value string
}

// RowData is the ordered column snapshot of one imported order row.
// The import file has no fixed schema, so columns are kept as an ordered
// list of key/value pairs; order follows the file's header.
type RowData []RowField

// Get returns the value for a column key.
func (r RowData) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set updates a column in place, or appends it if absent.
func (r *RowData) Set(key, value string) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, RowField{Key: key, Value: value})
}

// Keys returns the column keys in order.
func (r RowData) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Equal reports structural equality: same columns, same order, same values.
func (r RowData) Equal(other RowData) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a JSON object with columns in order.
func (r RowData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into ordered columns. A streaming
// decoder is used because encoding/json maps do not preserve key order.
func (r *RowData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row data: expected object, got %v", tok)
	}

	fields := RowData{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row data: expected string key, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case string:
			fields = append(fields, RowField{Key: key, Value: v})
		case nil:
			fields = append(fields, RowField{Key: key, Value: ""})
		case json.Delim:
			// Consuming a nested value token by token would desync the
			// key/value pairing; columns are scalars only.
			return fmt.Errorf("row data: nested value for key %q", key)
		default:
			// Numbers and booleans from older snapshots are kept as text.
			fields = append(fields, RowField{Key: key, Value: fmt.Sprint(v)})
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = fields
	return nil
}

// Clone returns an independent copy of the row data.
func (r RowData) Clone() RowData {
	if r == nil {
		return nil
	}
	out := make(RowData, len(r))
	copy(out, r)
	return out
}
