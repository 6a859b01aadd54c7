package service

import (
	"context"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/indexname"
	"faqsearch/internal/rag"
)

// DefaultSearchK is how many results a search returns when the caller does
// not say.
const DefaultSearchK = 5

// Translator is the slice of the translation layer the services consume.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// SearchRequest is a direct search over a tenant's index.
type SearchRequest struct {
	Query    string
	SourceID string
	K        int
	// Lang is the language of the query; results are translated back to it.
	Lang string
}

// SearchService answers direct search queries with composed results.
type SearchService interface {
	Search(ctx context.Context, req SearchRequest) ([]rag.Result, error)
}

// searchService implements SearchService.
type searchService struct {
	manager         IndexManager
	translator      Translator
	workingLanguage string
	defaultK        int
}

// NewSearchService creates a new SearchService. defaultK of 0 falls back to
// DefaultSearchK.
func NewSearchService(manager IndexManager, translator Translator, workingLanguage string, defaultK int) SearchService {
	if workingLanguage == "" {
		workingLanguage = "en"
	}
	if defaultK == 0 {
		defaultK = DefaultSearchK
	}
	return &searchService{
		manager:         manager,
		translator:      translator,
		workingLanguage: workingLanguage,
		defaultK:        defaultK,
	}
}

// Search retrieves the best-matching records and composes them with their
// parent/child relations, translated to the request language.
func (s *searchService) Search(ctx context.Context, req SearchRequest) ([]rag.Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Query == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	indexID := indexname.Normalize(req.SourceID)
	if indexID == "" {
		return nil, &ValidationError{
			Field:   "sheetId",
			Message: "must contain at least one letter or digit",
		}
	}

	k := req.K
	if k <= 0 {
		k = s.defaultK
	}
	lang := req.Lang
	if lang == "" {
		lang = s.workingLanguage
	}

	query := req.Query
	if lang != s.workingLanguage {
		translated, err := s.translator.Translate(ctx, query, lang, s.workingLanguage)
		if err != nil {
			return nil, WrapError(classifyExternal(err), "translate query")
		}
		logger.InfoContext(ctx, "search query translated",
			"from", lang, "to", s.workingLanguage)
		query = translated
	}

	scored, err := s.manager.Search(ctx, indexID, query, k)
	if err != nil {
		return nil, classifyIndexError(err)
	}

	records, err := s.manager.ListRecords(ctx, indexID)
	if err != nil {
		return nil, classifyIndexError(err)
	}

	results := rag.Compose(scored, records)

	if lang != s.workingLanguage {
		if err := s.translateResults(ctx, results, lang); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "search completed",
		"index_id", indexID, "k", k, "results", len(results))
	return results, nil
}

// translateResults rewrites questions and answers, children included, into
// the request language.
func (s *searchService) translateResults(ctx context.Context, results []rag.Result, lang string) error {
	for i := range results {
		q, err := s.translator.Translate(ctx, results[i].Question, s.workingLanguage, lang)
		if err != nil {
			return WrapError(classifyExternal(err), "translate results")
		}
		a, err := s.translator.Translate(ctx, results[i].Answer, s.workingLanguage, lang)
		if err != nil {
			return WrapError(classifyExternal(err), "translate results")
		}
		results[i].Question, results[i].Answer = q, a

		for j := range results[i].Children {
			child := &results[i].Children[j]
			if child.Question, err = s.translator.Translate(ctx, child.Question, s.workingLanguage, lang); err != nil {
				return WrapError(classifyExternal(err), "translate results")
			}
			if child.Answer, err = s.translator.Translate(ctx, child.Answer, s.workingLanguage, lang); err != nil {
				return WrapError(classifyExternal(err), "translate results")
			}
		}
	}
	return nil
}
