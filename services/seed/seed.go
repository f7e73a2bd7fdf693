package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/logger"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSeed = errors.New("invalid seed")

type InvalidSeedError struct {
	Path   string
	Reason string
}

func (e *InvalidSeedError) Error() string {
	return fmt.Sprintf("invalid seed file %s: %s", e.Path, e.Reason)
}

func (e *InvalidSeedError) Is(target error) bool {
	return target == ErrInvalidSeed
}

// Store is the part of the advocate store seeding needs.
type Store interface {
	Insert(ctx context.Context, advocates []advocatedb.Advocate) error
	FetchCount(ctx context.Context, predicate advocatedb.Predicate) (int64, error)
}

type Service struct {
	logger logger.Logger
	store  Store
}

// seedFile accepts either a bare list of advocates or a document with an
// "advocates" key. JSON files parse too, since YAML is a superset.
type seedFile struct {
	Advocates []advocatedb.Advocate `yaml:"advocates"`
}

func New(logger logger.Logger, store Store) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// LoadIfEmpty seeds the store from path unless it already holds advocates
// or path is empty. It returns the number of advocates inserted.
func (s *Service) LoadIfEmpty(ctx context.Context, path string) (int, error) {
	if path == "" {
		s.logger.Info("no seed file configured, skipping seeding")
		return 0, nil
	}

	count, err := s.store.FetchCount(ctx, advocatedb.Predicate{})
	if err != nil {
		s.logger.Error("could not count advocates before seeding", "err", err.Error())
		return 0, fmt.Errorf("could not count advocates: %w", err)
	}
	if count > 0 {
		s.logger.Info("store already has advocates, skipping seeding", "count", count)
		return 0, nil
	}

	return s.Load(ctx, path)
}

// Load reads advocates from path and inserts them with a single Insert, so a
// failed seed leaves the store empty and LoadIfEmpty retries it on the next
// start. Stores batch large inserts themselves.
func (s *Service) Load(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("could not read seed file", "path", path, "err", err.Error())
		return 0, fmt.Errorf("could not read seed file: %w", err)
	}

	advocates, err := parse(path, content)
	if err != nil {
		s.logger.Error("could not parse seed file", "path", path, "err", err.Error())
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		s.logger.Warn("seeding cancelled", "err", err.Error())
		return 0, err
	}

	if err := s.store.Insert(ctx, advocates); err != nil {
		s.logger.Error("could not insert seed advocates, nothing was seeded", "path", path, "err", err.Error())
		return 0, fmt.Errorf("could not insert seed advocates: %w", err)
	}
	inserted := len(advocates)

	s.logger.Info("seeded advocates", "path", path, "count", inserted)
	return inserted, nil
}

func parse(path string, content []byte) ([]advocatedb.Advocate, error) {
	var advocates []advocatedb.Advocate

	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(content)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &InvalidSeedError{Path: path, Reason: "file is empty"}
		}
		return nil, &InvalidSeedError{Path: path, Reason: err.Error()}
	}

	document := &root
	if document.Kind == yaml.DocumentNode && len(document.Content) > 0 {
		document = document.Content[0]
	}

	switch document.Kind {
	case yaml.SequenceNode:
		if err := document.Decode(&advocates); err != nil {
			return nil, &InvalidSeedError{Path: path, Reason: err.Error()}
		}
	case yaml.MappingNode:
		var file seedFile
		if err := document.Decode(&file); err != nil {
			return nil, &InvalidSeedError{Path: path, Reason: err.Error()}
		}
		advocates = file.Advocates
	default:
		return nil, &InvalidSeedError{Path: path, Reason: "expected a list of advocates"}
	}

	seen := make(map[int64]struct{}, len(advocates))
	for _, advocate := range advocates {
		if advocate.ID == 0 {
			continue
		}
		if _, ok := seen[advocate.ID]; ok {
			return nil, &InvalidSeedError{Path: path, Reason: fmt.Sprintf("duplicate advocate id %d", advocate.ID)}
		}
		seen[advocate.ID] = struct{}{}
	}

	return advocates, nil
}
