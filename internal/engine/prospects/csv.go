// internal/engine/prospects/csv.go
package prospects

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"candidate-evaluation-workers/internal/engine/coerce"
	"candidate-evaluation-workers/internal/models"
)

// CSV column headers. Import looks columns up by name, export writes them in
// this order.
const (
	HeaderName     = "Name"
	HeaderSource   = "Source"
	HeaderWealth   = "Wealth (M)"
	HeaderBestNNM  = "Best NNM (M)"
	HeaderWorstNNM = "Worst NNM (M)"
)

var Headers = []string{HeaderName, HeaderSource, HeaderWealth, HeaderBestNNM, HeaderWorstNNM}

// ImportCSV parses text and appends its rows to list. The header row must
// consist of exactly the five known column names in any order; otherwise
// nothing is imported. Stray quotes inside unquoted cells are kept as text,
// and a row that still cannot be parsed is skipped without affecting the
// others. Returns the new list and the number of rows appended.
func ImportCSV(list []models.Prospect, text string) ([]models.Prospect, int) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return list, 0
	}
	columns, ok := headerIndex(header)
	if !ok {
		return list, 0
	}

	out := clone(list, 0)
	imported := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			break
		}
		draft := models.ProspectDraft{
			Name:     cell(rec, columns[HeaderName]),
			Source:   cell(rec, columns[HeaderSource]),
			Wealth:   cell(rec, columns[HeaderWealth]),
			BestNNM:  cell(rec, columns[HeaderBestNNM]),
			WorstNNM: cell(rec, columns[HeaderWorstNNM]),
		}
		out = append(out, Normalize(draft))
		imported++
	}
	return out, imported
}

// ExportCSV renders list with the prospect header. The synthetic total row
// is not written so the output can be imported again unchanged.
func ExportCSV(list []models.Prospect) string {
	var b strings.Builder
	WriteRow(&b, Headers)
	for _, p := range list {
		WriteRow(&b, []string{
			p.Name,
			p.Source,
			coerce.Format(p.WealthM),
			coerce.Format(p.BestCaseNNMM),
			coerce.Format(p.WorstCaseNNMM),
		})
	}
	return b.String()
}

// WriteRow appends one CSV line. A field is quoted only when it contains a
// comma, a double quote, CR or LF; embedded quotes are doubled.
func WriteRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(QuoteField(f))
	}
	b.WriteByte('\n')
}

func QuoteField(f string) string {
	if !strings.ContainsAny(f, ",\"\r\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

func headerIndex(header []string) (map[string]int, bool) {
	if len(header) != len(Headers) {
		return nil, false
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[name]; dup {
			return nil, false
		}
		idx[name] = i
	}
	for _, want := range Headers {
		if _, ok := idx[want]; !ok {
			return nil, false
		}
	}
	return idx, true
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
