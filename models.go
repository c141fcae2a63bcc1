package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ColumnType is the upstream widget type of a column
type ColumnType string

const (
	ColumnTypeChoice      ColumnType = "Choice"
	ColumnTypeChoiceList  ColumnType = "ChoiceList"
	ColumnTypeAttachments ColumnType = "Attachments"
	ColumnTypeText        ColumnType = "Text"
)

// attachmentMarker tags a two-element array as a locally hosted attachment.
const attachmentMarker = "L"

// positionKeyPrefix marks keys of records that carry no id, keeping them apart
// from id keys.
const positionKeyPrefix = "#"

var (
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrRecordNotFound  = errors.New("record not found")
)

// Column describes one schema field
type Column struct {
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Type    ColumnType `json:"type"`
	Choices []string   `json:"choices,omitempty"`
}

// IsChoice reports whether values of the column render as tags.
func (c Column) IsChoice() bool {
	return c.Type == ColumnTypeChoice || c.Type == ColumnTypeChoiceList
}

// columnWire is the column shape served by the data API.
type columnWire struct {
	ID     json.RawMessage `json:"id"`
	Fields struct {
		Label         string `json:"label"`
		Type          string `json:"type"`
		WidgetOptions string `json:"widgetOptions"`
	} `json:"fields"`
}

type widgetOptions struct {
	Choices []string `json:"choices"`
}

// decodeColumns parses the column-schema document and enforces unique ids.
func decodeColumns(data []byte) ([]Column, error) {
	var wire []columnWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}

	columns := make([]Column, 0, len(wire))
	seen := make(map[string]bool, len(wire))
	for _, w := range wire {
		id := rawID(w.ID)
		if seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, id)
		}
		seen[id] = true

		col := Column{
			ID:    id,
			Label: w.Fields.Label,
			Type:  ColumnType(w.Fields.Type),
		}
		if col.Label == "" {
			col.Label = id
		}
		if col.IsChoice() && w.Fields.WidgetOptions != "" {
			var opts widgetOptions
			if err := json.Unmarshal([]byte(w.Fields.WidgetOptions), &opts); err != nil {
				return nil, fmt.Errorf("failed to decode widget options for column %q: %w", id, err)
			}
			col.Choices = opts.Choices
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// rawID renders a JSON string or number id as a plain string.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// ValueKind discriminates the shapes a record field can take
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindAttachment
)

// Value is a decoded record field. Attachment references are recognized once,
// at ingestion, so renderers never inspect array shapes themselves.
type Value struct {
	Kind         ValueKind
	Str          string
	Num          float64
	Bool         bool
	List         []Value
	AttachmentID string
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func ListValue(vs ...Value) Value { return Value{Kind: KindList, List: vs} }

func AttachmentValue(id string) Value {
	return Value{Kind: KindAttachment, AttachmentID: id}
}

// valueFromJSON converts a generic decoded JSON value.
func valueFromJSON(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return StringValue(t.String())
		}
		return NumberValue(f)
	case bool:
		return BoolValue(t)
	case []any:
		if len(t) == 2 {
			if marker, ok := t[0].(string); ok && marker == attachmentMarker {
				if id, ok := scalarText(t[1]); ok {
					return AttachmentValue(id)
				}
			}
		}
		list := make([]Value, 0, len(t))
		for _, item := range t {
			list = append(list, valueFromJSON(item))
		}
		return ListValue(list...)
	default:
		// nested objects are not part of the record model
		b, _ := json.Marshal(t)
		return StringValue(string(b))
	}
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return formatNumber(t), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// Truthy follows the loose truthiness the directory uses to decide whether a
// field is worth displaying.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindString:
		return v.Str != ""
	case KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindBool:
		return v.Bool
	case KindList, KindAttachment:
		return true
	}
	return false
}

// Text is the plain-text projection of the value.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.Text()
		}
		return strings.Join(parts, ",")
	case KindAttachment:
		return attachmentMarker + "," + v.AttachmentID
	}
	return ""
}

// Items returns list elements, or the value itself as a single element.
func (v Value) Items() []Value {
	if v.Kind == KindList {
		return v.List
	}
	return []Value{v}
}

// MatchesScalar reports exact equality between the raw value and an accepted
// filter value. Accepted values are strings, so numbers, booleans, lists and
// attachments never match.
func (v Value) MatchesScalar(accepted string) bool {
	return v.Kind == KindString && v.Str == accepted
}

// MarshalJSON writes the value back in the wire shape it was decoded from.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindAttachment:
		return json.Marshal([]string{attachmentMarker, v.AttachmentID})
	}
	return []byte("null"), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Record is one directory entry
type Record struct {
	Key    string
	Fields map[string]Value
}

// Get returns the field value, or null when absent.
func (r Record) Get(columnID string) Value {
	return r.Fields[columnID]
}

// MarshalJSON flattens the record to its field mapping.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields)
}

// decodeRecords parses the record-list document. Records may be flat
// mappings or wrapped as {"id": ..., "fields": {...}}.
func decodeRecords(data []byte) ([]Record, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		records = append(records, recordFromMap(i, item))
	}
	return records, nil
}

func recordFromMap(position int, item map[string]any) Record {
	if nested, ok := item["fields"].(map[string]any); ok && isWrapped(item) {
		flat := make(map[string]any, len(nested)+1)
		for k, v := range nested {
			flat[k] = v
		}
		if id, ok := item["id"]; ok {
			flat["id"] = id
		}
		item = flat
	}

	rec := Record{Fields: make(map[string]Value, len(item))}
	for k, v := range item {
		rec.Fields[k] = valueFromJSON(v)
	}
	if id, ok := scalarText(item["id"]); ok && id != "" {
		rec.Key = id
	} else {
		rec.Key = positionKeyPrefix + strconv.Itoa(position)
	}
	return rec
}

func isWrapped(item map[string]any) bool {
	for k := range item {
		if k != "id" && k != "fields" {
			return false
		}
	}
	return true
}

// ChoiceValueOption is one value of a choice column with its record count
type ChoiceValueOption struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Declared bool   `json:"declared"`
}

// ChoiceValuesResponse represents the response for choice value counts
type ChoiceValuesResponse struct {
	ColumnID     string              `json:"column_id"`
	ColumnLabel  string              `json:"column_label"`
	Values       []ChoiceValueOption `json:"values"`
	TotalRecords int                 `json:"total_records"`
}

// RecordListResponse represents a filtered and sorted record list
type RecordListResponse struct {
	Count   int      `json:"count"`
	Results []Record `json:"results"`
}
