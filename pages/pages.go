package pages

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	apiutil "github.com/t-hirai03/webmaka/api/util"
	"github.com/t-hirai03/webmaka/flow"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/types"
	"github.com/t-hirai03/webmaka/util"
)

// SessionCookie identifies the browser session the form snapshot belongs to
const SessionCookie = "contact_session"

var stepLabels = []string{"Input", "Confirm", "Complete"}

type progressStep struct {
	Number  int
	Label   string
	Active  bool
	Current bool
}

// progressSteps marks step n active when n <= current
func progressSteps(current flow.State) []progressStep {
	steps := make([]progressStep, 0, len(stepLabels))
	for i, label := range stepLabels {
		n := i + 1
		steps = append(steps, progressStep{
			Number:  n,
			Label:   label,
			Active:  n <= current.Step(),
			Current: n == current.Step(),
		})
	}
	return steps
}

type pageData struct {
	Title        string
	SiteName     string
	Steps        []progressStep
	InquiryTypes []util.InquiryType
	Input        *flow.InputView
	Confirm      *flow.ConfirmView
}

// ContactPages serves the INPUT, CONFIRM and THANKS screens
type ContactPages struct {
	flow         *flow.Flow
	siteName     string
	cookieSecure bool
	templates    *template.Template
}

func NewContactPages(f *flow.Flow, siteName string, cookieSecure bool) *ContactPages {
	return &ContactPages{
		flow:         f,
		siteName:     siteName,
		cookieSecure: cookieSecure,
		templates:    parseTemplates(),
	}
}

// Register the page routes on the router (group)
func (p *ContactPages) Register(r gin.IRouter) {
	r.GET("/contact", p.Input)
	r.POST("/contact", p.SubmitInput)
	r.GET("/contact/confirm", p.Confirm)
	r.POST("/contact/confirm", p.SubmitConfirm)
	r.POST("/contact/confirm/back", p.Back)
	r.GET("/contact/thanks", p.Thanks)
}

// sessionID returns the session cookie value, issuing a new session when absent.
// The cookie has no expiry so it lives as long as the browser session.
func (p *ContactPages) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", p.cookieSecure, true)
	return id
}

func (p *ContactPages) render(c *gin.Context, code int, name string, state flow.State, data pageData) {
	data.SiteName = p.siteName
	data.Steps = progressSteps(state)
	data.InquiryTypes = util.InquiryTypes
	c.Render(code, render.HTML{Template: p.templates, Name: name, Data: data})
}

func redirect(c *gin.Context, state flow.State) {
	c.Redirect(http.StatusSeeOther, state.Path())
}

// pageURL is the absolute URL of the INPUT page as seen by the browser
func pageURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + flow.Input.Path()
}

func (p *ContactPages) Input(c *gin.Context) {
	view := p.flow.EnterInput(c.Request.Context(), p.sessionID(c))
	p.render(c, http.StatusOK, "input", flow.Input, pageData{Title: "Contact", Input: view})
}

func (p *ContactPages) SubmitInput(c *gin.Context) {
	sessionID := p.sessionID(c)
	form := types.ContactFormData{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		InquiryType: c.PostForm("inquiryType"),
		Phone:       c.PostForm("phone"),
		Message:     c.PostForm("message"),
	}
	state, view, err := p.flow.SubmitInput(c.Request.Context(), sessionID, form, pageURL(c))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, types.ErrSubmissionInFlight) {
			code = http.StatusConflict
		} else {
			level.Error(global.Logger).Log("msg", "failed to accept contact form", "error", err)
		}
		p.render(c, code, "input", flow.Input, pageData{Title: "Contact", Input: view})
		return
	}
	if state == flow.Input {
		p.render(c, http.StatusBadRequest, "input", flow.Input, pageData{Title: "Contact", Input: view})
		return
	}
	redirect(c, state)
}

func (p *ContactPages) Confirm(c *gin.Context) {
	sessionID := p.sessionID(c)
	view, err := p.flow.EnterConfirm(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrIllegalTransition):
			redirect(c, p.flow.Current(sessionID))
		case errors.Is(err, types.ErrMissingSnapshot):
			redirect(c, flow.Input)
		default:
			level.Error(global.Logger).Log("msg", "failed to open confirm page", "error", err)
			redirect(c, flow.Input)
		}
		return
	}
	p.render(c, http.StatusOK, "confirm", flow.Confirm, pageData{Title: "Confirm your inquiry", Confirm: view})
}

func (p *ContactPages) SubmitConfirm(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := p.sessionID(c)
	result, err := p.flow.Submit(ctx, sessionID, apiutil.ClientIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrMissingSnapshot):
			redirect(c, flow.Input)
		case errors.Is(err, types.ErrIllegalTransition):
			redirect(c, p.flow.Current(sessionID))
		case errors.Is(err, types.ErrSubmissionInFlight):
			p.renderConfirm(c, sessionID, http.StatusConflict, flow.InFlightMessage)
		default:
			level.Error(global.Logger).Log("msg", "failed to submit contact form", "error", err)
			p.renderConfirm(c, sessionID, http.StatusInternalServerError, flow.GenericFailure)
		}
		return
	}
	if result.State == flow.Thanks {
		redirect(c, flow.Thanks)
		return
	}
	status := result.Status
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	p.renderConfirm(c, sessionID, status, result.Message)
}

// renderConfirm shows CONFIRM again with an inline message and enabled controls
func (p *ContactPages) renderConfirm(c *gin.Context, sessionID string, code int, message string) {
	view, err := p.flow.EnterConfirm(c.Request.Context(), sessionID)
	if err != nil {
		redirect(c, flow.Input)
		return
	}
	view.Error = message
	p.render(c, code, "confirm", flow.Confirm, pageData{Title: "Confirm your inquiry", Confirm: view})
}

func (p *ContactPages) Back(c *gin.Context) {
	state, err := p.flow.Back(c.Request.Context(), p.sessionID(c))
	if err != nil {
		level.Warn(global.Logger).Log("msg", "back from confirm rejected", "error", err)
	}
	redirect(c, state)
}

func (p *ContactPages) Thanks(c *gin.Context) {
	sessionID := p.sessionID(c)
	if err := p.flow.EnterThanks(sessionID); err != nil {
		redirect(c, p.flow.Current(sessionID))
		return
	}
	p.render(c, http.StatusOK, "thanks", flow.Thanks, pageData{Title: "Thank you"})
}
