package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks faqsearch/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a similarity search hit.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the contract with the vector search service. One
// collection holds one tenant's index.
type VectorStore interface {
	// CreateCollection creates a collection with the given vector size and
	// cosine distance.
	CreateCollection(ctx context.Context, collection string, vectorSize int) error

	// DeleteCollection removes a collection and all its points.
	DeleteCollection(ctx context.Context, collection string) error

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionExists reports whether a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// Count returns the number of points in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the top-k nearest points, highest similarity first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// ListPoints returns every point's metadata in the collection.
	// Vectors are not populated.
	ListPoints(ctx context.Context, collection string) ([]Point, error)
}
