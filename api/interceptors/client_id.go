package interceptors

import (
	"github.com/gin-gonic/gin"
	apiutil "github.com/t-hirai03/webmaka/api/util"
)

// ClientIDMiddleware resolves the client identity once per request and stores
// it under apiutil.ClientIDKey
func ClientIDMiddleware(platformHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(apiutil.ClientIDKey, apiutil.GetClientID(c, platformHeader))
		c.Next()
	}
}
