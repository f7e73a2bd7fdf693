package advocatedb

import "context"

// DB is the retrieval capability behind the advocate search. Implementations
// must apply the same predicate semantics in FetchPage and FetchCount.
type DB interface {
	FetchPage(ctx context.Context, predicate Predicate, order Order, limit int, offset int) ([]RawRow, error)
	FetchCount(ctx context.Context, predicate Predicate) (int64, error)
	Specialties(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, advocates []Advocate) error
	Close() error
}
