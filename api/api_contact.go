package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apiutil "github.com/t-hirai03/webmaka/api/util"
	"github.com/t-hirai03/webmaka/services"
)

type ContactApi struct {
	contactService *services.ContactService
	maxBodyBytes   int64
}

func NewContactApi(contactService *services.ContactService, maxBodyBytes int64) *ContactApi {
	return &ContactApi{contactService: contactService, maxBodyBytes: maxBodyBytes}
}

// Submit a contact form
// @Summary Submit a contact form
// @Description Validates the form and emails the site owner and the submitter
// @Tags Contact
// @Accept json
// @Produce json
// @Param form body types.ContactFormData true "contact form"
// @Success 200 {object} types.ContactResponse
// @Failure 400 {object} types.ContactResponse "invalid request or missing fields"
// @Failure 429 {object} types.ContactResponse "too many requests"
// @Failure 500 {object} types.ContactResponse "server not configured or send failed"
// @Router /api/contact [post]
func (ca *ContactApi) Submit(c *gin.Context) {
	body := c.Request.Body
	if ca.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, ca.maxBodyBytes)
	}
	outcome := ca.contactService.Submit(c.Request.Context(), apiutil.ClientIDFromContext(c), body)
	if !outcome.Response.Success {
		c.AbortWithStatusJSON(outcome.Status, outcome.Response)
		return
	}
	c.JSON(outcome.Status, outcome.Response)
}
