package search

// SortField names the secondary sort applied to a fetched page.
type SortField string

const (
	SortByRelevance         SortField = "relevance"
	SortByName              SortField = "name"
	SortByYearsOfExperience SortField = "yearsOfExperience"
	SortByCity              SortField = "city"
)

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Query is one search call. Page and Limit are clamped rather than rejected;
// zero values select the defaults.
type Query struct {
	Term      string
	Tags      []string
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// ParseSortField maps an inbound value onto a SortField. An empty value means
// relevance, which keeps the retrieval order.
func ParseSortField(value string) (SortField, error) {
	switch field := SortField(value); field {
	case "":
		return SortByRelevance, nil
	case SortByRelevance, SortByName, SortByYearsOfExperience, SortByCity:
		return field, nil
	default:
		return "", &InvalidInputError{Field: "sortBy", Value: value}
	}
}

func ParseSortOrder(value string) (SortOrder, error) {
	switch order := SortOrder(value); order {
	case "":
		return SortAscending, nil
	case SortAscending, SortDescending:
		return order, nil
	default:
		return "", &InvalidInputError{Field: "sortOrder", Value: value}
	}
}
