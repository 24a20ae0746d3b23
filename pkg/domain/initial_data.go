package domain

import "strings"

// DefaultScript is the form description served to the frontend.
const DefaultScript = "form(Product Review): rating(1-5), comments  -> /api/comments"

// SubmissionReply is the acknowledgement returned for every submission.
const SubmissionReply = "i_am_a_response"

// InitialData is the payload of the initial data endpoint.
type InitialData struct {
	Script string `json:"script"`
}

// NewInitialData returns the initial data carrying DefaultScript.
func NewInitialData() InitialData {
	return InitialData{Script: DefaultScript}
}

// Validate reports whether the initial data can be served.
func (d InitialData) Validate() error {
	if strings.TrimSpace(d.Script) == "" {
		return ErrEmptyScript
	}
	return nil
}
