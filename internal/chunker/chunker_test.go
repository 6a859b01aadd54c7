package chunker

import (
	"strings"
	"testing"

	"faqsearch/internal/source"
)

// wordCounter counts whitespace-separated words, standing in for the
// tiktoken encoding in tests.
func wordCounter(text string) int {
	return len(strings.Fields(text))
}

func TestSplitter_Split_ShortRecordSingleChunk(t *testing.T) {
	s := NewSplitterWithCounter(50, 5, wordCounter)

	records := []source.Record{
		{SourceIndex: 0, Text: "Short question. Short answer."},
	}
	chunks := s.Split(records)

	if len(chunks) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].NthChunk != 0 {
		t.Errorf("NthChunk = %d, want 0", chunks[0].NthChunk)
	}
	if chunks[0].Key() != "0_0" {
		t.Errorf("Key() = %q, want %q", chunks[0].Key(), "0_0")
	}
}

func TestSplitter_Split_RespectsTokenBudget(t *testing.T) {
	s := NewSplitterWithCounter(10, 0, wordCounter)

	// 6 sentences of 4 words each; budget of 10 words fits 2 per chunk.
	text := strings.TrimSpace(strings.Repeat("one two three four. ", 6))
	chunks := s.Split([]source.Record{{SourceIndex: 7, Text: text}})

	if len(chunks) != 3 {
		t.Fatalf("Split() returned %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if wordCounter(c.Text) > 10 {
			t.Errorf("chunk %d has %d words, budget is 10", i, wordCounter(c.Text))
		}
		if c.NthChunk != i {
			t.Errorf("chunk %d NthChunk = %d", i, c.NthChunk)
		}
		if c.SourceIndex != 7 {
			t.Errorf("chunk %d lost its record metadata", i)
		}
	}
}

func TestSplitter_Split_Overlap(t *testing.T) {
	s := NewSplitterWithCounter(10, 4, wordCounter)

	text := "aa bb cc dd. ee ff gg hh. ii jj kk ll."
	chunks := s.Split([]source.Record{{SourceIndex: 0, Text: text}})

	if len(chunks) < 2 {
		t.Fatalf("Split() returned %d chunks, want at least 2", len(chunks))
	}
	// The second chunk must start with the last sentence of the first.
	if !strings.HasPrefix(chunks[1].Text, "ee ff gg hh.") {
		t.Errorf("chunk 1 = %q, want overlap prefix %q", chunks[1].Text, "ee ff gg hh.")
	}
}

func TestSplitter_Split_OversizedSentenceNotBisected(t *testing.T) {
	s := NewSplitterWithCounter(5, 0, wordCounter)

	text := "one two three four five six seven eight."
	chunks := s.Split([]source.Record{{SourceIndex: 0, Text: text}})

	if len(chunks) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("oversized sentence was altered: %q", chunks[0].Text)
	}
}

func TestSplitter_Split_EmptyText(t *testing.T) {
	s := NewSplitterWithCounter(10, 2, wordCounter)

	chunks := s.Split([]source.Record{{SourceIndex: 0, Text: "   "}})
	if len(chunks) != 0 {
		t.Errorf("Split() returned %d chunks for blank text, want 0", len(chunks))
	}
}

func TestNumberChunks_ResetsAtGroupBoundary(t *testing.T) {
	chunks := []Chunk{
		{Record: source.Record{SourceIndex: 1}},
		{Record: source.Record{SourceIndex: 1}},
		{Record: source.Record{SourceIndex: 1}},
		{Record: source.Record{SourceIndex: 4}},
		{Record: source.Record{SourceIndex: 4}},
		{Record: source.Record{SourceIndex: 9}},
	}

	numbered := numberChunks(chunks)
	want := []int{0, 1, 2, 0, 1, 0}
	for i, c := range numbered {
		if c.NthChunk != want[i] {
			t.Errorf("chunk %d NthChunk = %d, want %d", i, c.NthChunk, want[i])
		}
	}
}

func TestSplitSentences_TrailingFragment(t *testing.T) {
	got := splitSentences("First sentence. Then a trailing fragment")
	if len(got) != 2 {
		t.Fatalf("splitSentences() returned %d sentences, want 2", len(got))
	}
	if got[1] != "Then a trailing fragment" {
		t.Errorf("trailing fragment = %q", got[1])
	}
}
