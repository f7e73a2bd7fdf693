package searchdb

// indexDocument is the searchable projection of an advocate. Contact details
// and timestamps stay in the payload store.
type indexDocument struct {
	ID                int64    `json:"id"`
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	City              string   `json:"city"`
	Degree            string   `json:"degree"`
	Specialties       []string `json:"specialties"`
	YearsOfExperience int      `json:"yearsOfExperience"`
}
