package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Snapshot is one fetched bundle of metric datasets.
type Snapshot struct {
	GeneratedAt string              `json:"generated_at"`
	Metrics     map[MetricKey][]Row `json:"metrics"`
	Unavailable []string            `json:"unavailable,omitempty"`
}

// Rows returns the rows of a metric; a missing metric yields nil.
func (s Snapshot) Rows(key MetricKey) []Row {
	if s.Metrics == nil {
		return nil
	}
	return s.Metrics[key]
}

// GeneratedTime parses GeneratedAt.
func (s Snapshot) GeneratedTime() (time.Time, bool) {
	return ParseTimestamp(s.GeneratedAt)
}

// Field is one column of a row. Value is nil, string, json.Number, bool or,
// for nested objects and arrays, json.RawMessage.
type Field struct {
	Key   string
	Value any
}

// Row is a metric row that keeps the column order it was decoded with.
type Row struct {
	fields []Field
}

// NewRow builds a row from key/value pairs in order.
func NewRow(fields ...Field) Row {
	row := Row{}
	for _, f := range fields {
		row.set(f.Key, f.Value)
	}
	return row
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.fields)
}

// Get returns the raw value of a column.
func (r Row) Get(key string) (any, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Text returns the string form of a column. Absent and null columns report
// false.
func (r Row) Text(key string) (string, bool) {
	value, ok := r.Get(key)
	if !ok || value == nil {
		return "", false
	}
	return scalarString(value), true
}

// TextOr returns the string form of a column or def when absent or null.
func (r Row) TextOr(key, def string) string {
	if text, ok := r.Text(key); ok {
		return text
	}
	return def
}

// Count returns a numeric column as an integer, 0 when absent, null or not
// numeric.
func (r Row) Count(key string) int64 {
	value, ok := r.Get(key)
	if !ok || value == nil {
		return 0
	}

	var raw string
	switch v := value.(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	default:
		return 0
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f)
	}
	return 0
}

func (r *Row) set(key string, value any) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// UnmarshalJSON decodes a JSON object while keeping its key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("decode row: expected JSON object")
	}

	row := Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode row key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode row: unexpected key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode row value %q: %w", key, err)
		}

		value, err := decodeScalar(raw)
		if err != nil {
			return fmt.Errorf("decode row value %q: %w", key, err)
		}
		row.set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}

	*r = row
	return nil
}

// MarshalJSON encodes the row with its original key order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode row value %q: %w", f.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeScalar(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty value")
	}

	switch trimmed[0] {
	case 'n':
		return nil, nil
	case 't', 'f':
		var b bool
		err := json.Unmarshal(trimmed, &b)
		return b, err
	case '"':
		var s string
		err := json.Unmarshal(trimmed, &s)
		return s, err
	case '{', '[':
		return json.RawMessage(append([]byte(nil), trimmed...)), nil
	default:
		return json.Number(string(trimmed)), nil
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case json.RawMessage:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999Z07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the date and timestamp shapes produced by the
// aggregation endpoint. Values without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
