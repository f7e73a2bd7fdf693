package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/services/search"
)

// handleListSpecialties serves the distinct specialties used to build
// filter pickers.
func handleListSpecialties(service *search.Service, logger logger.Logger, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		specialties, err := service.Specialties(ctx)
		if err != nil {
			logger.Error("could not list specialties", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not list specialties"})
			return
		}

		writeResponse(c, specialties, http.StatusOK, nil)
	}
}
