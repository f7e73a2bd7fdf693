// Package db opens the advocate store for the configured backend.
package db

import (
	"errors"
	"fmt"

	"github.com/meghashyamc/advocates/config"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/db/kvdb"
	"github.com/meghashyamc/advocates/db/searchdb"
	"github.com/meghashyamc/advocates/logger"
)

var ErrUnknownBackend = errors.New("unknown database backend")

// New opens the advocate store selected by the configured backend. The
// bleve backend also opens the payload store and closes it with the index.
func New(logger logger.Logger, cfg *config.Config) (advocatedb.DB, error) {
	backend := cfg.GetBackend()
	logger.Info("opening advocate store", "backend", backend)

	switch backend {
	case config.BackendSQLite:
		sqliteDB, err := advocatedb.New(logger, cfg)
		if err != nil {
			logger.Error("error creating sqliteDB", "err", err.Error())
			return nil, err
		}
		return sqliteDB, nil

	case config.BackendBleve:
		payloads, err := kvdb.New(logger, cfg)
		if err != nil {
			logger.Error("error creating kvDB", "err", err.Error())
			return nil, err
		}
		searchDB, err := searchdb.New(logger, cfg, payloads)
		if err != nil {
			payloads.Close()
			logger.Error("error creating searchDB", "err", err.Error())
			return nil, err
		}
		return searchDB, nil

	default:
		logger.Error("unknown database backend", "backend", backend)
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
