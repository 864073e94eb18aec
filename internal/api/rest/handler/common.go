package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/palemoky/contentiq/internal/errors"
)

// parseID extracts and validates an analysis UUID from a URL parameter.
// Returns the ID and true if successful, or sends an error response and returns false.
func parseID(c *gin.Context, param string) (string, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, apierrors.ErrInvalidID)
		return "", false
	}
	return id.String(), true
}

// respondError sends the APIError envelope for err.
func respondError(c *gin.Context, err error) {
	apiErr := apierrors.From(err)
	if apiErr.Code == apierrors.CodeInternal {
		_ = c.Error(err)
	}
	c.JSON(apiErr.HTTPStatus, gin.H{"error": apiErr})
}

// respondOK sends a JSON success response with the given data.
func respondOK(c *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"data": data})
}
