// Package csvimport reads the ';'-delimited spreadsheets exported by the
// asset team into rows keyed by canonical field names.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const Delimiter = ';'

var ErrMissingHeader = errors.New("csv file has no header row")

// NormalizeHeader upper-cases a header cell and removes all whitespace and
// any byte order mark, so "Usuário Atual" and "USUÁRIOATUAL" match.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, h)
}

// Read returns one map per data row. Keys are the canonical names from
// aliases, which is indexed by normalised header. Unmapped columns are
// dropped and values are trimmed.
func Read(r io.Reader, aliases map[string]string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = aliases[NormalizeHeader(h)]
	}

	var rows []map[string]string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		row := make(map[string]string, len(columns))
		for i, value := range record {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			row[columns[i]] = strings.TrimSpace(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
