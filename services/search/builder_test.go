package search

import (
	"testing"

	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/stretchr/testify/require"
)

var buildTextQueryTestCases = []struct {
	name     string
	input    string
	expected []advocatedb.Term
}{
	{
		name:     "Single word is a prefix",
		input:    "anxi",
		expected: []advocatedb.Term{{Text: "anxi", Prefix: true}},
	},
	{
		name:     "Only the last word is a prefix",
		input:    "john smith",
		expected: []advocatedb.Term{{Text: "john"}, {Text: "smith", Prefix: true}},
	},
	{
		name:     "Surrounding and repeated whitespace",
		input:    "  john \t  smi  ",
		expected: []advocatedb.Term{{Text: "john"}, {Text: "smi", Prefix: true}},
	},
	{
		name:     "Punctuation-only words are dropped",
		input:    "john - smith !!",
		expected: []advocatedb.Term{{Text: "john"}, {Text: "smith", Prefix: true}},
	},
	{
		name:     "Quotes are kept as text",
		input:    `o"hara`,
		expected: []advocatedb.Term{{Text: `o"hara`, Prefix: true}},
	},
	{
		name:     "Blank",
		input:    "   ",
		expected: nil,
	},
	{
		name:     "Nothing searchable",
		input:    "* - ()",
		expected: nil,
	},
}

func TestBuildTextQuery(t *testing.T) {
	for _, testCase := range buildTextQueryTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			query := BuildTextQuery(testCase.input)
			if testCase.expected == nil {
				assert.True(query.IsEmpty())
				return
			}
			assert.Equal(testCase.expected, query.Terms)
		})
	}
}

func TestBuildTextQueryJohnSmithRendersAnd(t *testing.T) {
	assert := require.New(t)
	assert.Equal(`"john" AND "smith"*`, BuildTextQuery("john smith").FTS5())
}

func TestNormalizeTags(t *testing.T) {
	assert := require.New(t)

	assert.Nil(normalizeTags(nil))
	assert.Equal([]string{}, normalizeTags([]string{" ", ""}))
	assert.Equal([]string{"ADHD", "Trauma"}, normalizeTags([]string{" ADHD", "Trauma ", "ADHD", ""}))
}

var selectStrategyTestCases = []struct {
	name             string
	term             string
	tags             []string
	expectedStrategy Strategy
	expectedOrder    advocatedb.Order
}{
	{name: "Plain", term: "", tags: nil, expectedStrategy: StrategyPlain, expectedOrder: advocatedb.OrderByID},
	{name: "Blank term and blank tags", term: "  ", tags: []string{" "}, expectedStrategy: StrategyPlain, expectedOrder: advocatedb.OrderByID},
	{name: "Ranked", term: "anxi", tags: nil, expectedStrategy: StrategyRanked, expectedOrder: advocatedb.OrderByRelevance},
	{name: "Tags", term: "", tags: []string{"ADHD"}, expectedStrategy: StrategyTags, expectedOrder: advocatedb.OrderByID},
	{name: "Ranked and tags", term: "john", tags: []string{"ADHD"}, expectedStrategy: StrategyRankedTags, expectedOrder: advocatedb.OrderByRelevance},
}

func TestSelectStrategy(t *testing.T) {
	for _, testCase := range selectStrategyTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			strategy, order := selectStrategy(buildPredicate(testCase.term, testCase.tags))
			assert.Equal(testCase.expectedStrategy, strategy)
			assert.Equal(testCase.expectedOrder, order)
		})
	}
}
