package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/t-hirai03/webmaka/types"
)

// ApiErrorf aborts the request with the {success:false, error} body
func ApiErrorf(c *gin.Context, code int, format string, args ...interface{}) types.ContactResponse {
	ar := types.ContactResponse{
		Success: false,
		Error:   fmt.Sprintf(format, args...),
	}
	c.AbortWithStatusJSON(code, ar)
	return ar
}

// ApiNotFound is the /api fallback for unknown routes
func ApiNotFound(c *gin.Context) {
	ApiErrorf(c, 404, "not found: %s %s", c.Request.Method, c.Request.URL.Path)
}
