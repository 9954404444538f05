package apiroutes

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/t-hirai03/webmaka/api"
	"github.com/t-hirai03/webmaka/api/interceptors"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/metrics"
	"github.com/t-hirai03/webmaka/pages"
	"github.com/t-hirai03/webmaka/services"
)

// REST API and page routes
func ConfigRoutes(router *gin.Engine, contactService *services.ContactService, contactPages *pages.ContactPages) *gin.Engine {
	// init metrics
	if global.Conf.Prometheus.Enabled {

		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	clientID := interceptors.ClientIDMiddleware(global.Conf.Contact.PlatformHeader)

	// API definitions
	contactApi := api.NewContactApi(contactService, global.Conf.Contact.MaxBodyBytes)
	healthApi := api.NewHealthCheckAPI(contactService)

	// PUBLIC API
	publicApi := router.Group("/api", metrics.MetricsMiddleware(), apiCors(global.Conf.Cors.AllowOrigins), clientID)
	{
		publicApi.POST("/contact", contactApi.Submit)
		// preflight needs a route so the group middleware (cors) runs
		publicApi.OPTIONS("/contact", func(c *gin.Context) { c.Status(204) })
		publicApi.GET("/v1/health", healthApi.HealthCheck)
	}

	// PAGES
	if contactPages != nil {
		pageGroup := router.Group("/", metrics.MetricsMiddleware(), clientID)
		contactPages.Register(pageGroup)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			api.ApiNotFound(c)
			return
		}
		c.String(404, "404 page not found")
	})

	return router
}

// apiCors allows the listed origins to call /api from the browser.
// Without origins only same-origin requests are possible.
func apiCors(allowOrigins []string) gin.HandlerFunc {
	if len(allowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	conf := cors.DefaultConfig()
	conf.AllowOrigins = allowOrigins
	conf.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	conf.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return cors.New(conf)
}
