package util

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/t-hirai03/webmaka/types"
)

const (
	MsgNameRequired    = "Please enter your name."
	MsgEmailRequired   = "Please enter your email address."
	MsgEmailInvalid    = "Please enter a valid email address."
	MsgMessageRequired = "Please enter your inquiry message."
)

// whitespace as understood by browsers (ECMAScript WhiteSpace + LineTerminator)
const jsSpaceClass = `\t\n\x0B\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

// local@domain.tld, permissive on purpose (not RFC 5322)
var emailRegex = regexp.MustCompile(`^[^` + jsSpaceClass + `@]+@[^` + jsSpaceClass + `@]+\.[^` + jsSpaceClass + `@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// RegisterValidation only fails on an empty tag or a nil func
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return TrimJS(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	return v
}

func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// TrimJS strips leading and trailing whitespace the way String.prototype.trim does
func TrimJS(s string) string {
	return strings.TrimFunc(s, isJSSpace)
}

// IsValidEmail checks the email shape
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidName is true when the name is not blank
func IsValidName(name string) bool {
	return TrimJS(name) != ""
}

// IsValidMessage is true when the message is not blank
func IsValidMessage(message string) bool {
	return TrimJS(message) != ""
}

func allFieldsMissing() types.ValidationResult {
	return types.ValidationResult{
		Valid: false,
		Errors: types.FormErrors{
			Name:    MsgNameRequired,
			Email:   MsgEmailRequired,
			Message: MsgMessageRequired,
		},
	}
}

// ValidateContactForm validates a decoded JSON value (or a ContactFormData) and
// returns a message for every failing required field.
func ValidateContactForm(data interface{}) types.ValidationResult {
	var form types.ContactFormData
	switch d := data.(type) {
	case types.ContactFormData:
		form = d
	case *types.ContactFormData:
		if d == nil {
			return allFieldsMissing()
		}
		form = *d
	case map[string]interface{}:
		form = formFromMap(d)
	default:
		return allFieldsMissing()
	}

	result := types.ValidationResult{Valid: true}
	err := validate.Struct(form)
	if err == nil {
		return result
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return allFieldsMissing()
	}
	result.Errors = ValidatorErrorToFormErrors(validationErrors)
	result.Valid = result.Errors.Len() == 0
	return result
}

// ValidatorErrorToFormErrors maps validator failures onto the field message catalog
func ValidatorErrorToFormErrors(errs validator.ValidationErrors) types.FormErrors {
	var fe types.FormErrors
	for _, err := range errs {
		switch err.Field() {
		case "name":
			fe.Name = MsgNameRequired
		case "email":
			if err.Tag() == "emailshape" {
				fe.Email = MsgEmailInvalid
			} else {
				fe.Email = MsgEmailRequired
			}
		case "message":
			fe.Message = MsgMessageRequired
		}
	}
	return fe
}

// IsValidContactFormData is the boolean form of ValidateContactForm
func IsValidContactFormData(data interface{}) bool {
	return ValidateContactForm(data).Valid
}

// AsContactFormData narrows a decoded JSON value to ContactFormData when it is valid
func AsContactFormData(data interface{}) (types.ContactFormData, bool) {
	if !IsValidContactFormData(data) {
		return types.ContactFormData{}, false
	}
	switch d := data.(type) {
	case types.ContactFormData:
		return d, true
	case *types.ContactFormData:
		return *d, true
	case map[string]interface{}:
		return formFromMap(d), true
	}
	return types.ContactFormData{}, false
}

// non-string values are treated as absent
func formFromMap(m map[string]interface{}) types.ContactFormData {
	str := func(key string) string {
		if v, ok := m[key].(string); ok {
			return v
		}
		return ""
	}
	return types.ContactFormData{
		Name:        str("name"),
		Email:       str("email"),
		InquiryType: str("inquiryType"),
		Phone:       str("phone"),
		Message:     str("message"),
		SourceURL:   str("sourceUrl"),
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHtml escapes user supplied text before it is interpolated into an HTML email
func EscapeHtml(text string) string {
	return htmlEscaper.Replace(text)
}
