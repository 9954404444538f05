package email

import (
	"bytes"
	"text/template"

	"github.com/t-hirai03/webmaka/types"
	"github.com/t-hirai03/webmaka/util"
)

const (
	unknownSource = "unknown"
	phoneMissing  = "not provided"
)

// values are escaped with util.EscapeHtml inside the templates, never before
var templateFuncs = template.FuncMap{"escape": util.EscapeHtml}

const summaryTable = `{{define "summary"}}<table style="border-collapse: collapse; width: 100%; max-width: 600px;">
	<tr><th style="text-align: left; padding: 8px; border-bottom: 1px solid #ddd; width: 30%;">Name</th><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{escape .Name}}</td></tr>
	<tr><th style="text-align: left; padding: 8px; border-bottom: 1px solid #ddd;">Email</th><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{escape .Email}}</td></tr>
	<tr><th style="text-align: left; padding: 8px; border-bottom: 1px solid #ddd;">Inquiry type</th><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{escape .InquiryLabel}}</td></tr>
	<tr><th style="text-align: left; padding: 8px; border-bottom: 1px solid #ddd;">Phone</th><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{escape .Phone}}</td></tr>
	<tr><th style="text-align: left; padding: 8px; border-bottom: 1px solid #ddd; vertical-align: top;">Message</th><td style="padding: 8px; border-bottom: 1px solid #ddd; white-space: pre-wrap;">{{escape .Message}}</td></tr>
</table>{{end}}`

var adminTemplate = template.Must(template.New("admin").Funcs(templateFuncs).Parse(summaryTable + `
<h2>New contact inquiry</h2>
<p style="margin-bottom: 16px; color: #666;">Source: {{escape .SourceURL}}</p>
{{template "summary" .}}
`))

var ackTemplate = template.Must(template.New("ack").Funcs(templateFuncs).Parse(summaryTable + `
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
	<p>Dear {{escape .Name}},</p>
	<p>Thank you for contacting us.</p>
	<p>We have received your inquiry with the details below.<br>
	We will review it and get back to you shortly.</p>
	<hr style="border: none; border-top: 1px solid #ddd; margin: 24px 0;" />
	<h3 style="font-size: 16px; margin-bottom: 16px;">Your inquiry</h3>
	{{template "summary" .}}
	<hr style="border: none; border-top: 1px solid #ddd; margin: 24px 0;" />
	<p style="color: #666; font-size: 14px;">
		This email was sent automatically.<br>
		If you did not submit this inquiry, please discard this email.
	</p>
	<p style="margin-top: 24px;">
		--------------------<br>
		{{escape .SiteName}}<br>
		{{escape .SiteURL}}<br>
		--------------------
	</p>
</div>
`))

type emailView struct {
	Name         string
	Email        string
	InquiryLabel string
	Phone        string
	Message      string
	SourceURL    string
	SiteName     string
	SiteURL      string
}

// Composer renders the admin notification and the submitter acknowledgment
type Composer struct {
	from     string
	siteName string
	siteURL  string
}

func NewComposer(from string, siteName string, siteURL string) *Composer {
	return &Composer{from: from, siteName: siteName, siteURL: siteURL}
}

func (c *Composer) view(form *types.ContactFormData) emailView {
	return emailView{
		Name:         form.Name,
		Email:        form.Email,
		InquiryLabel: util.GetInquiryTypeLabel(form.InquiryType),
		Phone:        util.OrDefault(form.Phone, phoneMissing),
		Message:      form.Message,
		SourceURL:    util.OrDefault(form.SourceURL, unknownSource),
		SiteName:     c.siteName,
		SiteURL:      c.siteURL,
	}
}

func render(t *template.Template, v emailView) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AdminNotification is sent to the site's contact mailbox
func (c *Composer) AdminNotification(form *types.ContactFormData, contactEmail string) (*types.OutgoingEmail, error) {
	body, err := render(adminTemplate, c.view(form))
	if err != nil {
		return nil, err
	}
	return &types.OutgoingEmail{
		From:    c.from,
		To:      []string{contactEmail},
		Subject: "[Contact] Inquiry from " + form.Name,
		HTML:    body,
		Text:    HtmlToText(body),
	}, nil
}

// Acknowledgment is sent to the submitter. It does not carry the source URL.
func (c *Composer) Acknowledgment(form *types.ContactFormData) (*types.OutgoingEmail, error) {
	body, err := render(ackTemplate, c.view(form))
	if err != nil {
		return nil, err
	}
	return &types.OutgoingEmail{
		From:    c.from,
		To:      []string{form.Email},
		Subject: "[" + c.siteName + "] Thank you for your inquiry",
		HTML:    body,
		Text:    HtmlToText(body),
	}, nil
}
