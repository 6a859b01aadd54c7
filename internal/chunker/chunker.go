// Package chunker splits source records into token-bounded, overlapping
// text chunks ready for embedding.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"faqsearch/internal/source"
)

const (
	// DefaultChunkSize is the token budget per chunk.
	DefaultChunkSize = 256
	// DefaultChunkOverlap is the token overlap between consecutive chunks
	// of the same record.
	DefaultChunkOverlap = 20
)

// encodingName is the tiktoken encoding used for token counting.
const encodingName = "cl100k_base"

var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Chunk is one token-bounded fragment of a record's text. All record fields
// are carried along as metadata; NthChunk is the 0-based position of the
// chunk among the chunks of the same record.
type Chunk struct {
	source.Record
	Text     string
	NthChunk int
}

// Key returns the stable storage identity of the chunk.
func (c Chunk) Key() string {
	return fmt.Sprintf("%d_%d", c.SourceIndex, c.NthChunk)
}

// TokenCounter returns the number of tokens in text.
type TokenCounter func(text string) int

// Splitter splits records into sentence-aligned chunks of at most chunkSize
// tokens with chunkOverlap tokens of overlap. Sentences are never bisected
// unless a single sentence exceeds the budget on its own.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	count        TokenCounter
}

// NewSplitter creates a Splitter counting tokens with the cl100k_base
// tiktoken encoding.
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	counter := func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
	return NewSplitterWithCounter(chunkSize, chunkOverlap, counter), nil
}

// NewSplitterWithCounter creates a Splitter with a custom token counter.
func NewSplitterWithCounter(chunkSize, chunkOverlap int, count TokenCounter) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		count:        count,
	}
}

// Split chunks each record's text and stamps chunk ordinals. Records must
// arrive in source order: the ordinal counter resets whenever SourceIndex
// changes, which assumes chunks of one record are contiguous.
func (s *Splitter) Split(records []source.Record) []Chunk {
	chunks := make([]Chunk, 0, len(records))
	for _, rec := range records {
		for _, text := range s.splitText(rec.Text) {
			chunks = append(chunks, Chunk{Record: rec, Text: text})
		}
	}
	return numberChunks(chunks)
}

// numberChunks assigns NthChunk: a running counter that increments while
// consecutive chunks share a SourceIndex and resets to 0 when it changes.
func numberChunks(chunks []Chunk) []Chunk {
	prev := -1
	nth := 0
	for i := range chunks {
		if chunks[i].SourceIndex == prev {
			nth++
		} else {
			nth = 0
		}
		chunks[i].NthChunk = nth
		prev = chunks[i].SourceIndex
	}
	return chunks
}

// splitText packs sentences greedily into chunks of at most chunkSize
// tokens, carrying chunkOverlap trailing tokens into the next chunk.
func (s *Splitter) splitText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var out []string
	var cur []string
	curTokens := 0

	for _, sent := range sentences {
		tok := s.count(sent)
		if curTokens+tok > s.chunkSize && len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur, curTokens = s.overlapTail(cur)
		}
		cur = append(cur, sent)
		curTokens += tok
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

// overlapTail returns the trailing sentences of a just-emitted chunk whose
// cumulative token count fits the configured overlap.
func (s *Splitter) overlapTail(sentences []string) ([]string, int) {
	if s.chunkOverlap == 0 {
		return nil, 0
	}
	total := 0
	i := len(sentences)
	for i > 0 {
		tok := s.count(sentences[i-1])
		if total+tok > s.chunkOverlap {
			break
		}
		total += tok
		i--
	}
	tail := make([]string, len(sentences)-i)
	copy(tail, sentences[i:])
	return tail, total
}

// splitSentences breaks text at sentence terminators, keeping any trailing
// fragment without a terminator as a final sentence.
func splitSentences(text string) []string {
	matches := sentencePattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var sentences []string
	for _, m := range matches {
		if sent := strings.TrimSpace(text[m[0]:m[1]]); sent != "" {
			sentences = append(sentences, sent)
		}
	}
	if rest := strings.TrimSpace(text[matches[len(matches)-1][1]:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
