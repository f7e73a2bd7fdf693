package searchdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	regexpTokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/advocates/config"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/db/kvdb"
	"github.com/meghashyamc/advocates/logger"
)

const indexingBatchSize = 100

// Text fields split on anything that is not a letter or digit and keep stop
// words, matching how the SQLite backend tokenizes.
const (
	textAnalyzerName  = "advocateText"
	textTokenizerName = "advocateWords"
	textTokenPattern  = `[\p{L}\p{N}]+`
)

// BleveDB serves advocate retrieval from a bleve index. The index holds the
// searchable fields only; full advocate payloads live in the key-value store
// and are joined onto the hits by id.
type BleveDB struct {
	logger   logger.Logger
	index    bleve.Index
	analyzer analysis.Analyzer
	payloads kvdb.DB
}

var _ advocatedb.DB = (*BleveDB)(nil)

func New(logger logger.Logger, cfg *config.Config, payloads kvdb.DB) (*BleveDB, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, err
	}
	indexPath := cfg.GetIndexPath()
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		logger.Error("failed to create index directory", "err", err.Error(), "path", indexPath)
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err := bleve.New(indexPath, indexMapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "err", err.Error())
			return nil, err
		}
	}
	return newBleveDB(logger, index, payloads)
}

// NewInMemory builds a BleveDB over a memory-only index.
func NewInMemory(logger logger.Logger, payloads kvdb.DB) (*BleveDB, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, err
	}
	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		logger.Error("could not create in-memory index", "err", err.Error())
		return nil, err
	}
	return newBleveDB(logger, index, payloads)
}

// newBleveDB resolves the text analyzer from the index's own mapping, so an
// index reopened from disk analyzes queries the way it analyzed documents.
func newBleveDB(logger logger.Logger, index bleve.Index, payloads kvdb.DB) (*BleveDB, error) {
	analyzer := index.Mapping().AnalyzerNamed(textAnalyzerName)
	if analyzer == nil {
		index.Close()
		logger.Error("index has no text analyzer", "analyzer", textAnalyzerName)
		return nil, fmt.Errorf("index has no analyzer named %s", textAnalyzerName)
	}
	return &BleveDB{logger: logger, index: index, analyzer: analyzer, payloads: payloads}, nil
}

func createIndexMapping() (mapping.IndexMapping, error) {

	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomTokenizer(textTokenizerName, map[string]interface{}{
		"type":   regexpTokenizer.Name,
		"regexp": textTokenPattern,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add tokenizer: %w", err)
	}
	err = indexMapping.AddCustomAnalyzer(textAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     textTokenizerName,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = textAnalyzerName
	docMapping := bleve.NewDocumentMapping()

	// Numeric id, used for identity ordering only
	idFieldMapping := bleve.NewNumericFieldMapping()
	idFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldID, idFieldMapping)

	for _, field := range []string{indexFieldFirstName, indexFieldLastName, indexFieldCity, indexFieldDegree} {
		textFieldMapping := bleve.NewTextFieldMapping()
		textFieldMapping.Analyzer = textAnalyzerName
		textFieldMapping.Store = false
		docMapping.AddFieldMappingsAt(field, textFieldMapping)
	}

	// Specialties are indexed twice: analyzed for free-text search and
	// verbatim under specialtyTags for exact tag membership and facets.
	specialtiesFieldMapping := bleve.NewTextFieldMapping()
	specialtiesFieldMapping.Analyzer = textAnalyzerName
	specialtiesFieldMapping.Store = false
	specialtyTagsFieldMapping := bleve.NewTextFieldMapping()
	specialtyTagsFieldMapping.Name = indexFieldSpecialtyTags
	specialtyTagsFieldMapping.Analyzer = keyword.Name
	specialtyTagsFieldMapping.Store = false
	specialtyTagsFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldSpecialties, specialtiesFieldMapping, specialtyTagsFieldMapping)

	yearsFieldMapping := bleve.NewNumericFieldMapping()
	yearsFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldYearsOfExperience, yearsFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping, nil
}

// Insert writes payloads first and then indexes them in batches, so every
// indexed id has a payload to join.
func (b *BleveDB) Insert(ctx context.Context, advocates []advocatedb.Advocate) error {
	now := time.Now().UTC()
	payloads := make(map[string][]byte, len(advocates))
	for i := range advocates {
		advocate := advocates[i]
		if advocate.ID <= 0 {
			return &advocatedb.InvalidAdvocateError{ID: advocate.ID, Reason: "the search index requires a positive id"}
		}
		if advocate.YearsOfExperience < 0 {
			return &advocatedb.InvalidAdvocateError{ID: advocate.ID, Reason: "years of experience cannot be negative"}
		}
		if advocate.Specialties == nil {
			advocate.Specialties = []string{}
		}
		if advocate.CreatedAt.IsZero() {
			advocate.CreatedAt = now
		}

		payload, err := json.Marshal(advocate)
		if err != nil {
			return fmt.Errorf("failed to marshal advocate %d: %w", advocate.ID, err)
		}
		payloads[docID(advocate.ID)] = payload
	}

	if err := b.payloads.SetMany(payloads); err != nil {
		b.logger.Error("could not store advocate payloads", "err", err.Error())
		return err
	}

	batch := b.index.NewBatch()

	for i, advocate := range advocates {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc := indexDocument{
			ID:                advocate.ID,
			FirstName:         advocate.FirstName,
			LastName:          advocate.LastName,
			City:              advocate.City,
			Degree:            advocate.Degree,
			Specialties:       advocate.Specialties,
			YearsOfExperience: advocate.YearsOfExperience,
		}
		if err := batch.Index(docID(advocate.ID), doc); err != nil {
			b.logger.Error("could not index advocate", "id", advocate.ID, "err", err.Error())
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%indexingBatchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index advocates", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) FetchPage(ctx context.Context, predicate advocatedb.Predicate, order advocatedb.Order, limit int, offset int) ([]advocatedb.RawRow, error) {
	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(predicate, b.analyzer), limit, offset, false)

	switch order {
	case advocatedb.OrderByID:
		searchRequest.SortBy([]string{indexFieldID})
	case advocatedb.OrderByRelevance:
		if !predicate.HasText() {
			return nil, &advocatedb.InvalidOrderError{Order: order, Reason: "relevance order requires a text query"}
		}
		searchRequest.SortBy([]string{sortByScore, indexFieldID})
	default:
		return nil, &advocatedb.InvalidOrderError{Order: order, Reason: "unsupported order"}
	}

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	rows := make([]advocatedb.RawRow, 0, len(searchResult.Hits))
	if len(searchResult.Hits) == 0 {
		return rows, nil
	}

	ids := make([]string, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		ids[i] = hit.ID
	}

	payloads, err := b.payloads.GetMany(ids)
	if err != nil {
		b.logger.Error("could not load advocate payloads", "err", err.Error())
		return nil, fmt.Errorf("could not load advocate payloads: %w", err)
	}

	for i, hit := range searchResult.Hits {
		row := advocatedb.RawRow{}
		if err := json.Unmarshal(payloads[i], &row); err != nil {
			b.logger.Error("could not decode advocate payload", "id", hit.ID, "err", err.Error())
			return nil, fmt.Errorf("could not decode advocate payload %s: %w", hit.ID, err)
		}
		if order == advocatedb.OrderByRelevance {
			row[rowKeyScore] = hit.Score
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (b *BleveDB) FetchCount(ctx context.Context, predicate advocatedb.Predicate) (int64, error) {
	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(predicate, b.analyzer), 0, 0, false)

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("count failed", "err", err.Error())
		return 0, fmt.Errorf("count failed: %w", err)
	}

	return int64(searchResult.Total), nil
}

func (b *BleveDB) Specialties(ctx context.Context) ([]string, error) {
	searchRequest := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	searchRequest.AddFacet(specialtiesFacet, bleve.NewFacetRequest(indexFieldSpecialtyTags, maxSpecialtyFacets))

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("specialties facet failed", "err", err.Error())
		return nil, fmt.Errorf("specialties facet failed: %w", err)
	}

	specialties := make([]string, 0)
	facet, ok := searchResult.Facets[specialtiesFacet]
	if !ok || facet.Terms == nil {
		return specialties, nil
	}
	for _, term := range facet.Terms.Terms() {
		specialties = append(specialties, term.Term)
	}
	sort.Strings(specialties)

	return specialties, nil
}

// buildSearchQuery is the single translation of a predicate into a bleve
// query, shared by FetchPage and FetchCount. Each word is split by the index
// analyzer; every token must match exactly except the final token of a
// prefix word.
func buildSearchQuery(predicate advocatedb.Predicate, analyzer analysis.Analyzer) query.Query {
	var clauses []query.Query

	for _, term := range predicate.Text().Terms {
		tokens := analyzer.Analyze([]byte(term.Text))
		for i, token := range tokens {
			if term.Prefix && i == len(tokens)-1 {
				clauses = append(clauses, bleve.NewPrefixQuery(string(token.Term)))
				continue
			}
			clauses = append(clauses, bleve.NewTermQuery(string(token.Term)))
		}
	}

	if predicate.HasText() && len(clauses) == 0 {
		return bleve.NewMatchNoneQuery()
	}

	if tags := predicate.Tags(); len(tags) > 0 {
		tagQueries := make([]query.Query, 0, len(tags))
		for _, tag := range tags {
			tagQuery := bleve.NewTermQuery(tag)
			tagQuery.SetField(indexFieldSpecialtyTags)
			tagQueries = append(tagQueries, tagQuery)
		}
		anyTagQuery := bleve.NewDisjunctionQuery(tagQueries...)
		anyTagQuery.SetMin(1)
		clauses = append(clauses, anyTagQuery)
	}

	if len(clauses) == 0 {
		return bleve.NewMatchAllQuery()
	}

	return bleve.NewConjunctionQuery(clauses...)
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	if b.payloads != nil {
		if err := b.payloads.Close(); err != nil {
			b.logger.Error("could not close payload store", "err", err.Error())
			return err
		}
	}
	return nil
}
