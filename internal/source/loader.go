package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"faqsearch/internal/contextutil"
)

// Header markers locating canonical columns by fuzzy match: the column whose
// header contains the marker is used, wherever the tenant placed it.
const (
	markerCategory    = "#CATEGORY"
	markerSubcategory = "#SUBCATEGORY"
	markerSlug        = "#SLUG"
	markerParent      = "#PARENT"
	markerQuestion    = "#QUESTION"
	markerAnswer      = "#ANSWER"
	markerVisible     = "#VISIBLE"
)

// hiddenValue marks rows excluded from publication.
const hiddenValue = "Hide"

// qaSheetTab is the spreadsheet tab holding question/answer rows.
const qaSheetTab = "Q&As"

// DefaultBaseURL is the spreadsheet CSV export endpoint.
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

// Loader fetches and normalizes tenant source data.
type Loader struct {
	baseURL string
	client  *http.Client
}

// NewLoader creates a Loader. baseURL is the spreadsheet export endpoint;
// pass an empty string for the default.
func NewLoader(baseURL string) *Loader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Loader{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// Load fetches tenant data and returns the visible, cleaned records in
// source row order. The ordering is relied upon downstream: the chunker's
// per-record chunk numbering assumes records arrive grouped and ordered.
func (l *Loader) Load(ctx context.Context, typ Type, id string, data *Payload) ([]Record, error) {
	rows, err := l.rows(ctx, typ, qaSheetTab, id, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Detail: "source contains no header row"}
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records, err := buildRecords(rows[1:], cols)
	if err != nil {
		return nil, err
	}

	records = validateRecords(ctx, records)
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "loaded source records", "type", typ, "count", len(records))
	return records, nil
}

// rows returns raw sheet rows (header first) for the given tab.
func (l *Loader) rows(ctx context.Context, typ Type, tab, id string, data *Payload) ([][]string, error) {
	switch typ {
	case TypeSpreadsheet:
		return l.fetchCSV(ctx, id, tab)
	case TypeJSON:
		if data == nil || len(data.Values) == 0 {
			return nil, ErrNoData
		}
		return data.Values, nil
	default:
		return nil, fmt.Errorf("loader for source type %q not available", typ)
	}
}

// fetchCSV downloads the CSV export of one sheet tab.
func (l *Loader) fetchCSV(ctx context.Context, id, tab string) ([][]string, error) {
	u := fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s", l.baseURL, url.PathEscape(id), url.QueryEscape(tab))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: u, Err: fmt.Errorf("bad status %d", resp.StatusCode)}
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	return rows, nil
}

// columnMap holds resolved column positions for the canonical schema.
type columnMap struct {
	category    int
	subcategory int
	slug        int
	parent      int
	question    int
	answer      int
	visible     int
}

// resolveColumns locates each canonical field by marker substring match.
func resolveColumns(header []string) (columnMap, error) {
	find := func(marker string) (int, error) {
		for i, h := range header {
			if strings.Contains(h, marker) {
				return i, nil
			}
		}
		return 0, &SchemaError{Detail: fmt.Sprintf("no column header contains marker %s", marker)}
	}

	var cols columnMap
	var err error
	if cols.category, err = find(markerCategory); err != nil {
		return cols, err
	}
	if cols.subcategory, err = find(markerSubcategory); err != nil {
		return cols, err
	}
	if cols.slug, err = find(markerSlug); err != nil {
		return cols, err
	}
	if cols.parent, err = find(markerParent); err != nil {
		return cols, err
	}
	if cols.question, err = find(markerQuestion); err != nil {
		return cols, err
	}
	if cols.answer, err = find(markerAnswer); err != nil {
		return cols, err
	}
	if cols.visible, err = find(markerVisible); err != nil {
		return cols, err
	}
	return cols, nil
}

// buildRecords converts raw data rows into Records, dropping hidden rows and
// rows missing required fields. Source row order is preserved.
func buildRecords(rows [][]string, cols columnMap) ([]Record, error) {
	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if cell(row, cols.visible) == hiddenValue {
			continue
		}

		catRaw := cell(row, cols.category)
		subRaw := cell(row, cols.subcategory)
		question := cell(row, cols.question)
		answer := cell(row, cols.answer)

		text := cleanText(question + " " + answer)
		if text == "" || catRaw == "" || subRaw == "" {
			continue
		}

		category, err := strconv.Atoi(catRaw)
		if err != nil {
			return nil, &SchemaError{Detail: fmt.Sprintf("row %d: category %q is not numeric", i, catRaw)}
		}
		subcategory, err := strconv.Atoi(subRaw)
		if err != nil {
			return nil, &SchemaError{Detail: fmt.Sprintf("row %d: subcategory %q is not numeric", i, subRaw)}
		}

		records = append(records, Record{
			SourceIndex: i,
			Category:    category,
			Subcategory: subcategory,
			Slug:        cell(row, cols.slug),
			Parent:      cell(row, cols.parent),
			Question:    question,
			Answer:      answer,
			Text:        text,
		})
	}
	return records, nil
}

// validateRecords drops records whose cleaned text carries no actual words
// (fewer than 3 consecutive alphabetic runes). Dropping is logged, not fatal.
func validateRecords(ctx context.Context, records []Record) []Record {
	logger := contextutil.LoggerFromContext(ctx)

	valid := make([]Record, 0, len(records))
	for _, rec := range records {
		if !hasText(rec.Text) {
			logger.WarnContext(ctx, "no text extracted from record, dropping",
				"source_index", rec.SourceIndex, "question", rec.Question)
			continue
		}
		valid = append(valid, rec)
	}
	return valid
}
