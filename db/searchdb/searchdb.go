// Package searchdb serves advocate retrieval from a bleve full-text index,
// joining hits onto payloads held in the key-value store.
package searchdb

const (
	indexFieldID                = "id"
	indexFieldFirstName         = "firstName"
	indexFieldLastName          = "lastName"
	indexFieldCity              = "city"
	indexFieldDegree            = "degree"
	indexFieldSpecialties       = "specialties"
	indexFieldSpecialtyTags     = "specialtyTags"
	indexFieldYearsOfExperience = "yearsOfExperience"

	sortByScore = "-_score"

	// rowKeyScore is the relevance key added to ranked rows.
	rowKeyScore = "score"

	specialtiesFacet   = "specialties"
	maxSpecialtyFacets = 1000
)
