package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/advocates/services/search"
)

type response struct {
	Data       any                `json:"data"`
	Pagination *search.Pagination `json:"pagination,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.JSON(statusCode, nil)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

func writePaginatedResponse(c *gin.Context, data any, pagination search.Pagination) {
	c.JSON(http.StatusOK, response{
		Data:       data,
		Pagination: &pagination,
	})
}
