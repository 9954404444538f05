package types

// ContactFormData is a single contact submission (also the persisted form snapshot)
type ContactFormData struct {
	Name        string `json:"name" validate:"notblank"`
	Email       string `json:"email" validate:"notblank,emailshape"`
	InquiryType string `json:"inquiryType"`
	Phone       string `json:"phone"`
	Message     string `json:"message" validate:"notblank"`
	SourceURL   string `json:"sourceUrl,omitempty"` // page the form was submitted from
}

// FormErrors holds a message per failing required field. Passing fields are omitted.
type FormErrors struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

// Len returns the number of failing fields
func (fe FormErrors) Len() int {
	n := 0
	for _, v := range []string{fe.Name, fe.Email, fe.Message} {
		if v != "" {
			n++
		}
	}
	return n
}

// Keys returns the json keys of the failing fields
func (fe FormErrors) Keys() []string {
	keys := []string{}
	if fe.Name != "" {
		keys = append(keys, "name")
	}
	if fe.Email != "" {
		keys = append(keys, "email")
	}
	if fe.Message != "" {
		keys = append(keys, "message")
	}
	return keys
}

type ValidationResult struct {
	Valid  bool       `json:"valid"`
	Errors FormErrors `json:"errors"`
}

// ContactResponse is the JSON body of every /api/contact response
type ContactResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Errors  *FormErrors `json:"errors,omitempty"`
}

// ContactOutcome pairs the HTTP status with the response body of a submission attempt
type ContactOutcome struct {
	Status   int
	Response ContactResponse
}

// Contact endpoint error messages
const (
	MsgInvalidRequest      = "invalid request"
	MsgFillRequired        = "please fill required fields"
	MsgTooManyRequests     = "too many requests — please wait and retry"
	MsgServerNotConfigured = "server not configured"
	MsgSendFailed          = "failed to send message"
)
