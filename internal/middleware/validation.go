package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/pkg/validation"
)

// BindJSON decodes and validates the request body into obj. On failure it writes
// the error response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, validation.FromValidator(err))
		return false
	}
	return true
}
