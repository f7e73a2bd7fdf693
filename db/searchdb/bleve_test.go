package searchdb

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/db/kvdb"
	"github.com/meghashyamc/advocates/logger"
	"github.com/stretchr/testify/require"
)

var testAdvocates = []advocatedb.Advocate{
	{ID: 1, FirstName: "John", LastName: "Smith", City: "Chicago", Degree: "MD", Specialties: []string{"ADHD", "Anxiety"}, YearsOfExperience: 10, PhoneNumber: 5551234567},
	{ID: 2, FirstName: "Jane", LastName: "Doe", City: "Boston", Degree: "PhD", Specialties: []string{"Trauma"}, YearsOfExperience: 4, PhoneNumber: 5552345678},
	{ID: 3, FirstName: "Johnny", LastName: "Smithers", City: "Austin", Degree: "MSW", Specialties: []string{"Anxiety disorders"}, YearsOfExperience: 7, PhoneNumber: 5553456789},
	{ID: 4, FirstName: "Alice", LastName: "Nguyen", City: "Seattle", Degree: "MD", Specialties: nil, YearsOfExperience: 2, PhoneNumber: 5554567890},
	{ID: 5, FirstName: "Bob", LastName: "O\"Hara", City: "Denver", Degree: "PhD", Specialties: []string{"ADHD", "Trauma"}, YearsOfExperience: 15, PhoneNumber: 5555678901},
}

func newTestLogger() logger.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler)
}

func openTestPayloads(t *testing.T, assert *require.Assertions) *kvdb.BoltDB {
	t.Helper()
	payloads, err := kvdb.Open(newTestLogger(), filepath.Join(t.TempDir(), "payloads.bolt"))
	assert.NoError(err, "could not open payload store")
	return payloads
}

func openTestDB(t *testing.T, assert *require.Assertions) *BleveDB {
	t.Helper()
	db, err := NewInMemory(newTestLogger(), openTestPayloads(t, assert))
	assert.NoError(err, "could not create in-memory index")
	t.Cleanup(func() { db.Close() })

	assert.NoError(db.Insert(context.Background(), testAdvocates), "could not insert test advocates")
	return db
}

func rowIDs(rows []advocatedb.RawRow) []float64 {
	ids := make([]float64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row["id"].(float64))
	}
	return ids
}

func textPredicate(terms ...advocatedb.Term) advocatedb.Predicate {
	return advocatedb.NewPredicate(advocatedb.TextQuery{Terms: terms}, nil)
}

func TestFetchPagePlainListing(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)
	ctx := context.Background()

	rows, err := db.FetchPage(ctx, advocatedb.Predicate{}, advocatedb.OrderByID, 3, 0)
	assert.NoError(err)
	assert.Equal([]float64{1, 2, 3}, rowIDs(rows))
	assert.Equal("John", rows[0]["firstName"])
	assert.NotContains(rows[0], rowKeyScore, "plain rows carry no score")

	rows, err = db.FetchPage(ctx, advocatedb.Predicate{}, advocatedb.OrderByID, 3, 3)
	assert.NoError(err)
	assert.Equal([]float64{4, 5}, rowIDs(rows))
	assert.Equal([]any{}, rows[0]["specialties"], "nil specialties are stored as an empty list")

	rows, err = db.FetchPage(ctx, advocatedb.Predicate{}, advocatedb.OrderByID, 3, 30)
	assert.NoError(err)
	assert.Empty(rows)

	count, err := db.FetchCount(ctx, advocatedb.Predicate{})
	assert.NoError(err)
	assert.Equal(int64(len(testAdvocates)), count)
}

func TestFetchPageRankedSearch(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)
	ctx := context.Background()

	predicate := textPredicate(advocatedb.Term{Text: "anxi", Prefix: true})
	rows, err := db.FetchPage(ctx, predicate, advocatedb.OrderByRelevance, 10, 0)
	assert.NoError(err)
	assert.ElementsMatch([]float64{1, 3}, rowIDs(rows))
	for _, row := range rows {
		assert.Contains(row, rowKeyScore, "ranked rows carry the hit score")
	}

	count, err := db.FetchCount(ctx, predicate)
	assert.NoError(err)
	assert.Equal(int64(2), count)
}

func TestFetchPageExactAndPrefixTerms(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)

	predicate := textPredicate(advocatedb.Term{Text: "John"}, advocatedb.Term{Text: "Smith", Prefix: true})
	rows, err := db.FetchPage(context.Background(), predicate, advocatedb.OrderByRelevance, 10, 0)
	assert.NoError(err)
	assert.Equal([]float64{1}, rowIDs(rows), "exact 'john' must not match 'Johnny'")
}

func TestFetchPageTagsAreInclusiveOr(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)
	ctx := context.Background()

	predicate := advocatedb.NewPredicate(advocatedb.TextQuery{}, []string{"ADHD", "Trauma"})
	rows, err := db.FetchPage(ctx, predicate, advocatedb.OrderByID, 50, 0)
	assert.NoError(err)
	assert.Equal([]float64{1, 2, 5}, rowIDs(rows))

	count, err := db.FetchCount(ctx, predicate)
	assert.NoError(err)
	assert.Equal(int64(3), count)

	predicate = advocatedb.NewPredicate(advocatedb.TextQuery{}, []string{"Anxiety"})
	count, err = db.FetchCount(ctx, predicate)
	assert.NoError(err)
	assert.Equal(int64(1), count, "tags match whole specialties, not words inside them")
}

func TestFetchPageTextAndTags(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)
	ctx := context.Background()

	predicate := advocatedb.NewPredicate(advocatedb.TextQuery{Terms: []advocatedb.Term{{Text: "anxi", Prefix: true}}}, []string{"ADHD"})
	rows, err := db.FetchPage(ctx, predicate, advocatedb.OrderByRelevance, 10, 0)
	assert.NoError(err)
	assert.Equal([]float64{1}, rowIDs(rows))

	count, err := db.FetchCount(ctx, predicate)
	assert.NoError(err)
	assert.Equal(int64(1), count)
}

func TestFetchPageRelevanceNeedsText(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)

	_, err := db.FetchPage(context.Background(), advocatedb.Predicate{}, advocatedb.OrderByRelevance, 10, 0)
	assert.ErrorIs(err, advocatedb.ErrInvalidOrder)
}

func TestFetchPageMissingPayload(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)

	detached := &BleveDB{logger: newTestLogger(), index: db.index, payloads: openTestPayloads(t, assert)}
	defer detached.payloads.Close()

	_, err := detached.FetchPage(context.Background(), advocatedb.Predicate{}, advocatedb.OrderByID, 10, 0)
	assert.ErrorIs(err, kvdb.ErrNotFound)
}

func TestSpecialties(t *testing.T) {
	assert := require.New(t)
	db := openTestDB(t, assert)

	specialties, err := db.Specialties(context.Background())
	assert.NoError(err)
	assert.Equal([]string{"ADHD", "Anxiety", "Anxiety disorders", "Trauma"}, specialties)
}

func TestInsertRequiresPositiveID(t *testing.T) {
	assert := require.New(t)
	db, err := NewInMemory(newTestLogger(), openTestPayloads(t, assert))
	assert.NoError(err)
	defer db.Close()

	err = db.Insert(context.Background(), []advocatedb.Advocate{{FirstName: "No", LastName: "Id"}})
	assert.ErrorIs(err, advocatedb.ErrInvalidAdvocate)
}

func TestFetchPageAnalyzesQueryWords(t *testing.T) {
	assert := require.New(t)
	db, err := NewInMemory(newTestLogger(), openTestPayloads(t, assert))
	assert.NoError(err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	assert.NoError(db.Insert(ctx, []advocatedb.Advocate{
		{ID: 1, FirstName: "Mary", LastName: "Smith-Jones", City: "New York", Degree: "PsyD", Specialties: []string{"Sex and relationship issues"}, PhoneNumber: 1},
		{ID: 2, FirstName: "Dr.", LastName: "Who", City: "Cardiff", Degree: "MD", Specialties: []string{"Trauma"}, PhoneNumber: 2},
	}))

	testCases := []struct {
		name     string
		terms    []advocatedb.Term
		expected []float64
	}{
		{name: "StopWordIsSearchable", terms: []advocatedb.Term{{Text: "sex"}, {Text: "and"}, {Text: "rel", Prefix: true}}, expected: []float64{1}},
		{name: "HyphenatedPrefix", terms: []advocatedb.Term{{Text: "smith-jo", Prefix: true}}, expected: []float64{1}},
		{name: "HyphenatedMixedCase", terms: []advocatedb.Term{{Text: "Smith-Jones", Prefix: true}}, expected: []float64{1}},
		{name: "TrailingPunctuation", terms: []advocatedb.Term{{Text: "dr.", Prefix: true}}, expected: []float64{2}},
		{name: "HyphenatedExactWord", terms: []advocatedb.Term{{Text: "smith-jones"}, {Text: "new", Prefix: true}}, expected: []float64{1}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			predicate := textPredicate(testCase.terms...)

			rows, err := db.FetchPage(ctx, predicate, advocatedb.OrderByRelevance, 10, 0)
			assert.NoError(err)
			assert.Equal(testCase.expected, rowIDs(rows))

			count, err := db.FetchCount(ctx, predicate)
			assert.NoError(err)
			assert.Equal(int64(len(testCase.expected)), count)
		})
	}
}

func TestIndexReopensWithTextAnalyzer(t *testing.T) {
	assert := require.New(t)
	indexPath := filepath.Join(t.TempDir(), "index.bleve")

	indexMapping, err := createIndexMapping()
	assert.NoError(err)
	index, err := bleve.New(indexPath, indexMapping)
	assert.NoError(err)
	assert.NoError(index.Close())

	index, err = bleve.Open(indexPath)
	assert.NoError(err)
	db, err := newBleveDB(newTestLogger(), index, openTestPayloads(t, assert))
	assert.NoError(err, "a reopened index keeps its custom analyzer")
	defer db.Close()

	tokens := db.analyzer.Analyze([]byte("Smith-Jones and Dr."))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		terms = append(terms, string(token.Term))
	}
	assert.Equal([]string{"smith", "jones", "and", "dr"}, terms)
}
