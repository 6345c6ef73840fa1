package handler

import (
	"net/http"

	"anoa.com/homeboard/pkg/apperror"
	"anoa.com/homeboard/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func formatValidationError(err error) string {
	return validator.FormatValidationError(err)
}

// parseIDParam parses the ":id" path segment, answering 404 for garbage so
// record ids cannot be probed apart from missing ones.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": apperror.ErrNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}
