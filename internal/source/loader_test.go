package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var testHeader = []string{"#CATEGORY", "#SUBCATEGORY", "#SLUG", "#PARENT", "#QUESTION", "#ANSWER", "#VISIBLE"}

func payload(rows ...[]string) *Payload {
	return &Payload{Values: append([][]string{testHeader}, rows...)}
}

func TestLoader_Load_JSON(t *testing.T) {
	loader := NewLoader("")
	ctx := context.Background()

	records, err := loader.Load(ctx, TypeJSON, "", payload(
		[]string{"1", "2", "shelter", "", "Where can I sleep?", "At the shelter.", "Show"},
		[]string{"1", "2", "", "shelter", "Is it free?", "Yes, it is free.", "Show"},
		[]string{"1", "2", "", "", "Hidden question", "Hidden answer", "Hide"},
	))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(records))
	}

	first := records[0]
	if first.SourceIndex != 0 || first.Category != 1 || first.Subcategory != 2 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Slug != "shelter" {
		t.Errorf("first record slug = %q, want %q", first.Slug, "shelter")
	}
	if records[1].Parent != "shelter" {
		t.Errorf("second record parent = %q, want %q", records[1].Parent, "shelter")
	}
}

func TestLoader_Load_JSONNoData(t *testing.T) {
	loader := NewLoader("")

	_, err := loader.Load(context.Background(), TypeJSON, "", nil)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Load() error = %v, want ErrNoData", err)
	}
}

func TestLoader_Load_MissingMarker(t *testing.T) {
	loader := NewLoader("")

	header := []string{"#CATEGORY", "#SUBCATEGORY", "#SLUG", "#PARENT", "#QUESTION", "#VISIBLE"}
	_, err := loader.Load(context.Background(), TypeJSON, "", &Payload{Values: [][]string{header}})

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Load() error = %v, want SchemaError", err)
	}
}

func TestLoader_Load_NonNumericCategory(t *testing.T) {
	loader := NewLoader("")

	_, err := loader.Load(context.Background(), TypeJSON, "", payload(
		[]string{"one", "2", "", "", "A question here", "An answer here", "Show"},
	))

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Load() error = %v, want SchemaError", err)
	}
}

func TestLoader_Load_DropsRowsMissingFields(t *testing.T) {
	loader := NewLoader("")

	records, err := loader.Load(context.Background(), TypeJSON, "", payload(
		[]string{"", "2", "", "", "No category", "Answer text here", "Show"},
		[]string{"1", "", "", "", "No subcategory", "Answer text here", "Show"},
		[]string{"1", "2", "", "", "", "", "Show"},
		[]string{"1", "2", "", "", "Valid question", "Valid answer", "Show"},
	))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Load() returned %d records, want 1", len(records))
	}
	if records[0].SourceIndex != 3 {
		t.Errorf("surviving record SourceIndex = %d, want 3", records[0].SourceIndex)
	}
}

func TestLoader_Load_EmptinessCheck(t *testing.T) {
	loader := NewLoader("")

	// An emoji-only answer has no run of 3 alphabetic runes and must be
	// dropped even though it is 26 characters long.
	records, err := loader.Load(context.Background(), TypeJSON, "", payload(
		[]string{"1", "2", "", "", "🙂🙂🙂🙂🙂", "🎉🎉🎉🎉🎉🎉🎉🎉", "Show"},
		[]string{"1", "2", "", "", "Real question", "Real answer", "Show"},
	))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Load() returned %d records, want 1", len(records))
	}
	if records[0].Question != "Real question" {
		t.Errorf("surviving record question = %q", records[0].Question)
	}
}

func TestLoader_Load_Spreadsheet(t *testing.T) {
	csvBody := "\"#CATEGORY\",\"#SUBCATEGORY\",\"#SLUG\",\"#PARENT\",\"#QUESTION\",\"#ANSWER\",\"#VISIBLE\"\n" +
		"\"3\",\"4\",\"\",\"\",\"What documents do I need?\",\"A passport or ID card.\",\"Show\"\n"

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, csvBody)
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL)
	records, err := loader.Load(context.Background(), TypeSpreadsheet, "sheet-id", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Load() returned %d records, want 1", len(records))
	}
	if records[0].Category != 3 || records[0].Subcategory != 4 {
		t.Errorf("unexpected record: %+v", records[0])
	}
	if gotPath != "/sheet-id/gviz/tq" {
		t.Errorf("fetched path = %q", gotPath)
	}
}

func TestLoader_Load_SpreadsheetUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL)
	_, err := loader.Load(context.Background(), TypeSpreadsheet, "missing", nil)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Load() error = %v, want FetchError", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "html tags stripped",
			in:   "Go to the <b>registration</b> desk. <br>Bring your papers.",
			want: "Go to the registration desk. Bring your papers.",
		},
		{
			name: "newlines collapse to spaces",
			in:   "First line\nsecond line",
			want: "First line second line",
		},
		{
			name: "urls removed",
			in:   "See https://example.org/info for details",
			want: "See for details",
		},
		{
			name: "markdown emphasis removed",
			in:   "This is **very** important and _urgent_",
			want: "This is very important and urgent",
		},
		{
			name: "emoji removed",
			in:   "Welcome 🎉 to the office 🙂",
			want: "Welcome to the office",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abc", true},
		{"a b c", false},
		{"12 ab 34", false},
		{"🙂🙂🙂🙂🙂🙂🙂🙂🙂", false},
		{"x1 yes2", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := hasText(tt.in); got != tt.want {
			t.Errorf("hasText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
