package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/meghashyamc/advocates/db/advocatedb"
)

// Record is the canonical advocate returned to callers, whichever backend
// and strategy produced the row.
type Record struct {
	ID                int64      `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	City              string     `json:"city"`
	Degree            string     `json:"degree"`
	Specialties       []string   `json:"specialties"`
	YearsOfExperience int        `json:"yearsOfExperience"`
	PhoneNumber       int64      `json:"phoneNumber"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

// sqliteTimeLayout is SQLite's CURRENT_TIMESTAMP format.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// transformRow maps a raw row onto a Record. Keys are looked up in both
// snake_case and camelCase, ranking columns are ignored, and missing values
// fall back to zero values with specialties defaulting to an empty list.
func transformRow(row advocatedb.RawRow) Record {
	return Record{
		ID:                toInt64(lookup(row, "id")),
		FirstName:         toString(lookup(row, "first_name", "firstName")),
		LastName:          toString(lookup(row, "last_name", "lastName")),
		City:              toString(lookup(row, "city")),
		Degree:            toString(lookup(row, "degree")),
		Specialties:       toSpecialties(lookup(row, "specialties")),
		YearsOfExperience: int(max(toInt64(lookup(row, "years_of_experience", "yearsOfExperience")), 0)),
		PhoneNumber:       toInt64(lookup(row, "phone_number", "phoneNumber")),
		CreatedAt:         toTime(lookup(row, "created_at", "createdAt")),
	}
}

func lookup(row advocatedb.RawRow, keys ...string) any {
	for _, key := range keys {
		if value, ok := row[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return int64(f)
	case []byte:
		return parseInt64(string(v))
	case string:
		return parseInt64(v)
	default:
		return 0
	}
}

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func toSpecialties(value any) []string {
	specialties := []string{}
	switch v := value.(type) {
	case []string:
		specialties = append(specialties, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				specialties = append(specialties, s)
			}
		}
	case string:
		return decodeSpecialties([]byte(v))
	case []byte:
		return decodeSpecialties(v)
	}
	return specialties
}

func decodeSpecialties(blob []byte) []string {
	var specialties []string
	if err := json.Unmarshal(blob, &specialties); err != nil || specialties == nil {
		return []string{}
	}
	return specialties
}

func toTime(value any) *time.Time {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		t = parseTime(v)
	case []byte:
		t = parseTime(string(v))
	case int64:
		t = time.Unix(v, 0).UTC()
	case float64:
		t = time.Unix(int64(v), 0).UTC()
	}
	if t.IsZero() {
		return nil
	}
	return &t
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, sqliteTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
