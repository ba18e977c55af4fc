package sheets

import (
	"encoding/json"
	"strings"
)

// Row is one decoded sheet row. Index is the 1-based sheet row number
// (header included), valid only while the sheet keeps its current ordering;
// concurrent inserts elsewhere invalidate it.
type Row struct {
	Index  int
	Fields map[string]string
}

// MarshalJSON flattens the fields and attaches the synthetic row_index the
// way clients round-trip it back into update calls.
func (r Row) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		m[k] = v
	}
	m["row_index"] = r.Index
	return json.Marshal(m)
}

// Get returns a field value by normalized column key.
func (r Row) Get(key string) string {
	return r.Fields[key]
}

// HeaderKey normalizes a header cell into a field key: lower-cased, spaces
// replaced by underscores.
func HeaderKey(header string) string {
	return strings.ReplaceAll(strings.ToLower(header), " ", "_")
}

// DecodeRows re-keys positional rows into field maps using the header row.
// Ranges with no data rows decode to nil.
func DecodeRows(values [][]string) []Row {
	if len(values) < 2 {
		return nil
	}

	header := values[0]
	rows := make([]Row, 0, len(values)-1)
	for i, cells := range values[1:] {
		fields := make(map[string]string, len(header))
		for col, h := range header {
			var v string
			if col < len(cells) {
				v = cells[col]
			}
			fields[HeaderKey(h)] = v
		}
		rows = append(rows, Row{
			// +2: sheet rows are 1-based and row 1 is the header.
			Index:  i + 2,
			Fields: fields,
		})
	}

	return rows
}
