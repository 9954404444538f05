package types

// OutgoingEmail is a transactional email handed to an email sender
type OutgoingEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// ContactSecrets are resolved from the runtime environment on every submission
type ContactSecrets struct {
	APIKey       string
	ContactEmail string
}

func (s ContactSecrets) Complete() bool {
	return s.APIKey != "" && s.ContactEmail != ""
}
