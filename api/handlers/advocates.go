package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/advocates/db/advocatedb"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/services/search"
	"github.com/meghashyamc/advocates/validation"
)

const HeaderPaginationTotalCount = "X-Pagination-Total-Count"

// SearchRequest keeps page and limit as strings so that malformed values
// fall back to defaults instead of failing the request.
type SearchRequest struct {
	Search      string   `form:"search" json:"search" validate:"max=200,valid_search"`
	Specialties []string `form:"specialties" json:"specialties" validate:"max=50,valid_specialties"`
	Page        string   `form:"page" json:"page"`
	Limit       string   `form:"limit" json:"limit"`
	SortBy      string   `form:"sortBy" json:"sortBy" validate:"valid_sort_by"`
	SortOrder   string   `form:"sortOrder" json:"sortOrder" validate:"valid_sort_order"`
}

func (r *SearchRequest) toQuery() search.Query {
	return search.Query{
		Term:      r.Search,
		Tags:      r.Specialties,
		Page:      parseLenientInt(r.Page),
		Limit:     parseLenientInt(r.Limit),
		SortBy:    search.SortField(r.SortBy),
		SortOrder: search.SortOrder(r.SortOrder),
	}
}

// parseLenientInt returns 0, meaning "use the default", for anything that
// is not an integer.
func parseLenientInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func SetupAdvocates(router *gin.Engine, logger logger.Logger, advocateDB advocatedb.DB, validator *validation.Validator, searchTimeout time.Duration) {
	service := search.New(logger, advocateDB)
	router.GET("/advocates", handleSearchAdvocates(service, logger, validator, searchTimeout))
	router.GET("/specialties", handleListSpecialties(service, logger, searchTimeout))
}

func handleSearchAdvocates(service *search.Service, logger logger.Logger, validator *validation.Validator, searchTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusBadRequest, []string{"failed to extract query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusBadRequest, []string{err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
		defer cancel()

		result, err := service.Search(ctx, request.toQuery())
		if err != nil {
			c.Abort()
			if errors.Is(err, search.ErrInvalidInput) {
				writeResponse(c, nil, http.StatusBadRequest, []string{err.Error()})
				return
			}
			logger.Error("search failed", "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{search.ErrSearchFailed.Error()})
			return
		}

		c.Header(HeaderPaginationTotalCount, strconv.FormatInt(result.Pagination.TotalCount, 10))
		writePaginatedResponse(c, result.Data, result.Pagination)
	}
}
