package pages

import "html/template"

const layoutTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.SiteName}}</title>
</head>
<body>
<main class="contact">
<h1>{{.Title}}</h1>
{{template "progress" .Steps}}
{{end}}

{{define "foot"}}</main>
</body>
</html>
{{end}}

{{define "progress"}}<nav aria-label="Contact progress" class="contact-progress">
<ol>
{{- range .}}
<li class="step{{if .Active}} active{{end}}"{{if .Current}} aria-current="step"{{end}}><span class="step-number">{{.Number}}</span> <span class="step-label">{{.Label}}</span></li>
{{- end}}
</ol>
</nav>{{end}}
`

const inputTemplate = `
{{define "input"}}{{template "head" .}}
{{- if .Input.Error}}
<p id="input-message" class="form-error" role="alert">{{.Input.Error}}</p>
{{- end}}
<form id="contact-form" method="post" action="/contact" novalidate>
<div class="field">
<label for="name">Name <span class="required">required</span></label>
<input id="name" name="name" type="text" required autocomplete="name" value="{{.Input.Form.Name}}"{{if .Input.Errors.Name}} aria-invalid="true" aria-describedby="name-error"{{end}}>
{{- if .Input.Errors.Name}}
<p id="name-error" class="field-error" role="alert">{{.Input.Errors.Name}}</p>
{{- end}}
</div>
<div class="field">
<label for="email">Email <span class="required">required</span></label>
<input id="email" name="email" type="email" required autocomplete="email" value="{{.Input.Form.Email}}"{{if .Input.Errors.Email}} aria-invalid="true" aria-describedby="email-error"{{end}}>
{{- if .Input.Errors.Email}}
<p id="email-error" class="field-error" role="alert">{{.Input.Errors.Email}}</p>
{{- end}}
</div>
<div class="field">
<label for="inquiry-type">Inquiry type</label>
<select id="inquiry-type" name="inquiryType">
<option value="">Please select</option>
{{- range .InquiryTypes}}
<option value="{{.Key}}"{{if eq .Key $.Input.Form.InquiryType}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
</div>
<div class="field">
<label for="phone">Phone</label>
<input id="phone" name="phone" type="tel" autocomplete="tel" value="{{.Input.Form.Phone}}">
</div>
<div class="field">
<label for="message">Message <span class="required">required</span></label>
<textarea id="message" name="message" rows="8" required{{if .Input.Errors.Message}} aria-invalid="true" aria-describedby="message-error"{{end}}>{{.Input.Form.Message}}</textarea>
{{- if .Input.Errors.Message}}
<p id="message-error" class="field-error" role="alert">{{.Input.Errors.Message}}</p>
{{- end}}
</div>
<button id="submit-button" type="submit">Confirm</button>
</form>
{{template "foot" .}}{{end}}
`

const confirmTemplate = `
{{define "confirm"}}{{template "head" .}}
<p>Please check your inquiry before sending.</p>
<dl class="confirm-list">
<dt>Name</dt><dd id="confirm-name">{{.Confirm.Form.Name}}</dd>
<dt>Email</dt><dd id="confirm-email">{{.Confirm.Form.Email}}</dd>
<dt>Inquiry type</dt><dd id="confirm-inquiry-type">{{.Confirm.InquiryLabel}}</dd>
<dt>Phone</dt><dd id="confirm-phone">{{.Confirm.Form.Phone}}</dd>
<dt>Message</dt><dd id="confirm-message-body" style="white-space: pre-wrap;">{{.Confirm.Form.Message}}</dd>
</dl>
{{- if .Confirm.Error}}
<p id="confirm-message" class="form-error" role="alert">{{.Confirm.Error}}</p>
{{- end}}
<form id="back-form" method="post" action="/contact/confirm/back"></form>
<form id="confirm-form" method="post" action="/contact/confirm">
<button id="back-button" type="submit" form="back-form">Back</button>
<button id="submit-button" type="submit" data-busy-label="{{.Confirm.BusyLabel}}">Send</button>
</form>
<script>
document.getElementById("confirm-form").addEventListener("submit", function () {
  var submit = document.getElementById("submit-button");
  var back = document.getElementById("back-button");
  submit.disabled = true;
  back.disabled = true;
  submit.textContent = submit.getAttribute("data-busy-label");
});
</script>
{{template "foot" .}}{{end}}
`

const thanksTemplate = `
{{define "thanks"}}{{template "head" .}}
<p id="thanks-message">Thank you for your inquiry. We will get back to you shortly.</p>
<a id="home-link" href="/">Back to top</a>
{{template "foot" .}}{{end}}
`

func parseTemplates() *template.Template {
	return template.Must(template.New("pages").Parse(layoutTemplates + inputTemplate + confirmTemplate + thanksTemplate))
}
