package search

import (
	"context"
	"fmt"
	"time"

	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/metrics"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	logger logger.Logger
	db     advocatedb.DB
}

func New(logger logger.Logger, db advocatedb.DB) *Service {
	return &Service{
		logger: logger,
		db:     db,
	}
}

// Search runs one query through a single retrieval strategy. The page and
// the total count are fetched concurrently from the same predicate; if
// either fails, or ctx is done, the whole call fails with ErrSearchFailed.
func (s *Service) Search(ctx context.Context, query Query) (*Result, error) {
	sortBy, err := ParseSortField(string(query.SortBy))
	if err != nil {
		return nil, err
	}
	sortOrder, err := ParseSortOrder(string(query.SortOrder))
	if err != nil {
		return nil, err
	}

	page, limit, offset := validatePagination(query.Page, query.Limit)
	predicate := buildPredicate(query.Term, query.Tags)
	strategy, order := selectStrategy(predicate)

	start := time.Now()
	rows, totalCount, err := s.fetch(ctx, predicate, order, limit, offset)
	metrics.ObserveSearch(string(strategy), err, time.Since(start))
	if err != nil {
		s.logger.Error("search failed", "strategy", strategy, "err", err.Error())
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, transformRow(row))
	}
	sortPage(records, sortBy, sortOrder)

	s.logger.Debug("search completed", "strategy", strategy, "page", page, "limit", limit, "returned", len(records), "total", totalCount)

	return assemble(records, page, limit, totalCount), nil
}

func (s *Service) fetch(ctx context.Context, predicate advocatedb.Predicate, order advocatedb.Order, limit int, offset int) ([]advocatedb.RawRow, int64, error) {
	var (
		rows       []advocatedb.RawRow
		totalCount int64
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		page, err := s.db.FetchPage(groupCtx, predicate, order, limit, offset)
		if err != nil {
			return &RetrievalError{Op: "fetch page", Err: err}
		}
		rows = page
		return nil
	})

	group.Go(func() error {
		count, err := s.db.FetchCount(groupCtx, predicate)
		if err != nil {
			return &RetrievalError{Op: "fetch count", Err: err}
		}
		if count < 0 {
			return &RetrievalError{Op: "fetch count", Err: fmt.Errorf("negative count %d", count)}
		}
		totalCount = count
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, 0, err
	}

	// A store that ignores cancellation must not turn a cancelled call into
	// a success.
	if err := ctx.Err(); err != nil {
		return nil, 0, &RetrievalError{Op: "search", Err: err}
	}

	return rows, totalCount, nil
}

// Specialties lists every distinct specialty tag in the store.
func (s *Service) Specialties(ctx context.Context) ([]string, error) {
	specialties, err := s.db.Specialties(ctx)
	if err != nil {
		s.logger.Error("could not list specialties", "err", err.Error())
		return nil, &RetrievalError{Op: "list specialties", Err: err}
	}
	return specialties, nil
}
