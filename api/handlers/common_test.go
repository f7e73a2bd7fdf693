// Common test helpers
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/advocates/config"
	"github.com/meghashyamc/advocates/db"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/services/search"
	"github.com/meghashyamc/advocates/validation"
	"github.com/stretchr/testify/require"
)

var testAdvocates = []advocatedb.Advocate{
	{ID: 1, FirstName: "John", LastName: "Smith", City: "Chicago", Degree: "MD", Specialties: []string{"ADHD", "Anxiety"}, YearsOfExperience: 10, PhoneNumber: 5551234567},
	{ID: 2, FirstName: "Jane", LastName: "Doe", City: "Boston", Degree: "PhD", Specialties: []string{"Trauma"}, YearsOfExperience: 4, PhoneNumber: 5552345678},
	{ID: 3, FirstName: "Johnny", LastName: "Smithers", City: "Austin", Degree: "MSW", Specialties: []string{"Anxiety disorders"}, YearsOfExperience: 7, PhoneNumber: 5553456789},
	{ID: 4, FirstName: "Alice", LastName: "Nguyen", City: "Seattle", Degree: "MD", Specialties: nil, YearsOfExperience: 2, PhoneNumber: 5554567890},
	{ID: 5, FirstName: "Bob", LastName: "Adams", City: "Denver", Degree: "PhD", Specialties: []string{"ADHD", "Trauma"}, YearsOfExperience: 15, PhoneNumber: 5555678901},
}

var testBackends = []string{config.BackendSQLite, config.BackendBleve}

type testCase struct {
	name               string
	queryParams        url.Values
	expectedStatus     int
	expectedIDs        []int64
	anyOrder           bool
	expectedPagination *search.Pagination
	expectedError      string
}

type testResponse struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *search.Pagination `json:"pagination"`
	Errors     []string           `json:"errors"`
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions, backend string) (*gin.Engine, advocatedb.DB) {

	t.Setenv("ENV", "test")
	t.Setenv("DB_BACKEND", backend)
	t.Setenv("STORAGE_PATH", t.TempDir())

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	advocateDB, err := db.New(testLogger, cfg)
	assert.NoError(err, "could not create advocate database")
	t.Cleanup(func() { advocateDB.Close() })

	err = advocateDB.Insert(context.Background(), testAdvocates)
	assert.NoError(err, "could not insert test advocates")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupAdvocates(router, testLogger, advocateDB, validator, cfg.GetSearchTimeout())

	return router, advocateDB
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams url.Values) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?" + queryParams.Encode()
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint)

	req, err := http.NewRequest(method, endpoint, nil)
	assert.NoError(err)

	router.ServeHTTP(w, req)

	return w
}

func decodeTestResponse(assert *require.Assertions, w *httptest.ResponseRecorder) testResponse {
	var body testResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &body), "response is not valid JSON")
	return body
}

func recordIDs(assert *require.Assertions, data json.RawMessage) []int64 {
	var records []search.Record
	assert.NoError(json.Unmarshal(data, &records))

	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return ids
}
