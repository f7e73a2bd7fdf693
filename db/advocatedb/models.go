package advocatedb

import "time"

type Advocate struct {
	ID                int64     `json:"id" yaml:"id"`
	FirstName         string    `json:"firstName" yaml:"firstName"`
	LastName          string    `json:"lastName" yaml:"lastName"`
	City              string    `json:"city" yaml:"city"`
	Degree            string    `json:"degree" yaml:"degree"`
	Specialties       []string  `json:"specialties" yaml:"specialties"`
	YearsOfExperience int       `json:"yearsOfExperience" yaml:"yearsOfExperience"`
	PhoneNumber       int64     `json:"phoneNumber" yaml:"phoneNumber"`
	CreatedAt         time.Time `json:"createdAt" yaml:"createdAt"`
}

// RawRow is one result row keyed by column or property name. The key set
// differs between backends and between ranked and unranked queries.
type RawRow map[string]any

type Order int

const (
	OrderByID Order = iota
	OrderByRelevance
)

func (o Order) String() string {
	switch o {
	case OrderByID:
		return "id"
	case OrderByRelevance:
		return "relevance"
	default:
		return "unknown"
	}
}
