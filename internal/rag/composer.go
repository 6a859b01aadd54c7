package rag

import (
	"faqsearch/internal/index"
	"faqsearch/internal/source"
)

// ChildResult is a follow-up question attached to a search result. Score is
// the best retrieval score the child itself earned, 0 when it was never
// retrieved.
type ChildResult struct {
	Category    int     `json:"category"`
	Subcategory int     `json:"subcategory"`
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	Score       float32 `json:"score"`
}

// Result is one composed search result. A record whose Parent points at
// another record's Slug is replaced by that parent, carrying the child's
// score, with all of the parent's children attached.
type Result struct {
	Category    int           `json:"category"`
	Subcategory int           `json:"subcategory"`
	Slug        string        `json:"slug"`
	Question    string        `json:"question"`
	Answer      string        `json:"answer"`
	Score       float32       `json:"score"`
	Children    []ChildResult `json:"children"`

	sourceIndex int
}

// Compose turns raw retrieval hits into client-facing results using the
// full record set of the index: hits deduplicate by source row keeping the
// best score and first-hit order, parents gather their children, child hits
// are replaced by their parent, and the final list deduplicates by record
// identity in insertion order.
func Compose(scored []index.ScoredChunk, records []source.Record) []Result {
	bestScore := make(map[int]float32)
	var hitOrder []int
	for _, s := range scored {
		ix := s.Chunk.SourceIndex
		if prev, ok := bestScore[ix]; !ok {
			bestScore[ix] = s.Score
			hitOrder = append(hitOrder, ix)
		} else if s.Score > prev {
			bestScore[ix] = s.Score
		}
	}

	byIndex := make(map[int]source.Record, len(records))
	bySlug := make(map[string]source.Record)
	childrenOf := make(map[string][]source.Record)
	for _, rec := range records {
		byIndex[rec.SourceIndex] = rec
		if rec.Slug != "" {
			bySlug[rec.Slug] = rec
		}
		if rec.Parent != "" {
			childrenOf[rec.Parent] = append(childrenOf[rec.Parent], rec)
		}
	}

	seen := make(map[int]bool)
	var results []Result
	for _, ix := range hitOrder {
		rec, ok := byIndex[ix]
		if !ok {
			continue
		}

		r := composeOne(rec, bestScore[ix], bySlug, childrenOf, bestScore)
		if seen[r.sourceIndex] {
			continue
		}
		seen[r.sourceIndex] = true
		results = append(results, r)
	}
	return results
}

// composeOne builds the result for one hit record, substituting the parent
// when the hit is a child.
func composeOne(rec source.Record, score float32, bySlug map[string]source.Record, childrenOf map[string][]source.Record, bestScore map[int]float32) Result {
	if rec.Parent != "" {
		if parent, ok := bySlug[rec.Parent]; ok {
			return Result{
				Category:    parent.Category,
				Subcategory: parent.Subcategory,
				Slug:        parent.Slug,
				Question:    parent.Question,
				Answer:      parent.Answer,
				Score:       score,
				Children:    childResults(childrenOf[parent.Slug], bestScore),
				sourceIndex: parent.SourceIndex,
			}
		}
	}

	r := Result{
		Category:    rec.Category,
		Subcategory: rec.Subcategory,
		Slug:        rec.Slug,
		Question:    rec.Question,
		Answer:      rec.Answer,
		Score:       score,
		sourceIndex: rec.SourceIndex,
	}
	if rec.Slug != "" {
		r.Children = childResults(childrenOf[rec.Slug], bestScore)
	}
	return r
}

func childResults(children []source.Record, bestScore map[int]float32) []ChildResult {
	if len(children) == 0 {
		return nil
	}
	out := make([]ChildResult, len(children))
	for i, c := range children {
		out[i] = ChildResult{
			Category:    c.Category,
			Subcategory: c.Subcategory,
			Question:    c.Question,
			Answer:      c.Answer,
			Score:       bestScore[c.SourceIndex],
		}
	}
	return out
}
