package index

import (
	"faqsearch/internal/chunker"
	"faqsearch/internal/source"
)

// Payload keys under which chunk fields are stored in the vector service.
const (
	metaChunkKey       = "chunk_key"
	metaText           = "text"
	metaSourceIndex    = "source_index"
	metaCategory       = "category"
	metaSubcategory    = "subcategory"
	metaSlug           = "slug"
	metaParent         = "parent"
	metaQuestion       = "question"
	metaAnswer         = "answer"
	metaNthChunk       = "nth_chunk"
	metaEmbeddingModel = "embedding_model"
)

// chunkMeta flattens a chunk into a point payload. The embedding model is
// stamped at insertion time.
func chunkMeta(c chunker.Chunk, embeddingModel string) map[string]any {
	return map[string]any{
		metaChunkKey:       c.Key(),
		metaText:           c.Text,
		metaSourceIndex:    c.SourceIndex,
		metaCategory:       c.Category,
		metaSubcategory:    c.Subcategory,
		metaSlug:           c.Slug,
		metaParent:         c.Parent,
		metaQuestion:       c.Question,
		metaAnswer:         c.Answer,
		metaNthChunk:       c.NthChunk,
		metaEmbeddingModel: embeddingModel,
	}
}

// chunkFromMeta rebuilds a chunk from a point payload.
func chunkFromMeta(meta map[string]any) chunker.Chunk {
	return chunker.Chunk{
		Record: source.Record{
			SourceIndex: metaInt(meta, metaSourceIndex),
			Category:    metaInt(meta, metaCategory),
			Subcategory: metaInt(meta, metaSubcategory),
			Slug:        metaString(meta, metaSlug),
			Parent:      metaString(meta, metaParent),
			Question:    metaString(meta, metaQuestion),
			Answer:      metaString(meta, metaAnswer),
			Text:        metaString(meta, metaText),
		},
		Text:     metaString(meta, metaText),
		NthChunk: metaInt(meta, metaNthChunk),
	}
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// metaInt tolerates the numeric types different payload decoders produce.
func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
