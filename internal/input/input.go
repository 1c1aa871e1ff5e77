// Package input parses artist identifier lists from structured input
// files. Two formats are supported: a JSON array (of ID strings or
// objects carrying an "id" field) and CSV with a designated identifier
// column whose cells may hold plain IDs or embedded JSON.
package input

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects the input file format.
type Format string

const (
	// FormatJSON is a JSON array of IDs or records.
	FormatJSON Format = "json"

	// FormatCSV is a CSV file with a header row and an identifier column.
	FormatCSV Format = "csv"
)

// DefaultIDColumn is the CSV column read when none is configured.
const DefaultIDColumn = "artist"

// ParseFormat validates a format selector.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown input format %q (expected json or csv)", s)
	}
}

// ReadIDs reads artist IDs from the file at path. Duplicates pass
// through untouched; deduplication is the orchestrator's concern.
func ReadIDs(path string, format Format, idColumn string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		return parseJSON(f)
	case FormatCSV:
		return parseCSV(f, idColumn)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// parseJSON reads a JSON array whose elements are ID strings or objects
// with an "id" field.
func parseJSON(r io.Reader) ([]string, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse JSON input: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for i, elem := range raw {
		var value any
		if err := json.Unmarshal(elem, &value); err != nil {
			return nil, fmt.Errorf("parse JSON input element %d: %w", i, err)
		}
		extracted, err := idsFromValue(value)
		if err != nil {
			return nil, fmt.Errorf("JSON input element %d: %w", i, err)
		}
		ids = append(ids, extracted...)
	}

	return ids, nil
}

// parseCSV reads a CSV file with a header row and extracts IDs from the
// given column. Cells holding embedded JSON (a quoted string, an array,
// or objects with "id" fields) are decoded; anything else is taken as a
// plain ID.
func parseCSV(r io.Reader, idColumn string) ([]string, error) {
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	column := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), idColumn) {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, fmt.Errorf("CSV input has no %q column", idColumn)
	}

	var ids []string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV line %d: %w", line, err)
		}
		if column >= len(record) {
			continue
		}

		cell := strings.TrimSpace(record[column])
		if cell == "" {
			continue
		}

		extracted, err := parseCell(cell)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		ids = append(ids, extracted...)
	}

	return ids, nil
}

// parseCell decodes a single CSV cell, detecting embedded JSON by its
// leading character.
func parseCell(cell string) ([]string, error) {
	switch cell[0] {
	case '{', '[', '"':
		var value any
		if err := json.Unmarshal([]byte(cell), &value); err != nil {
			return nil, fmt.Errorf("parse embedded JSON: %w", err)
		}
		return idsFromValue(value)
	default:
		return []string{cell}, nil
	}
}

// idsFromValue extracts IDs from a decoded JSON value: a bare string, an
// object with an "id" field, or an array of either.
func idsFromValue(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	case map[string]any:
		id, ok := v["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("record has no string %q field", "id")
		}
		return []string{id}, nil
	case []any:
		var ids []string
		for _, elem := range v {
			extracted, err := idsFromValue(elem)
			if err != nil {
				return nil, err
			}
			ids = append(ids, extracted...)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
