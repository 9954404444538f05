package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/services"
)

type HealthCheckAPI struct {
	contactService *services.ContactService
}

func NewHealthCheckAPI(contactService *services.ContactService) *HealthCheckAPI {
	return &HealthCheckAPI{contactService: contactService}
}

// HealthCheck godoc
// @Summary Server health
// @Description status is "not_configured" while the email secrets are missing
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (ha *HealthCheckAPI) HealthCheck(c *gin.Context) {
	status := "ok"
	if !ha.contactService.Configured() {
		status = "not_configured"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"version":  global.Conf.Version,
		"mode":     global.Conf.Mode,
		"provider": ha.contactService.Provider(),
	})
}
