package dto

import (
	"vegan-agent-be/pkg/ingredient"
	"vegan-agent-be/pkg/llm"
	"vegan-agent-be/pkg/verdict"
)

// ScanStatus is the outcome of one scan or search. Controllers map it to
// an HTTP status; the body shape is the same for all of them.
type ScanStatus string

const (
	ScanStatusOK              ScanStatus = "ok"
	ScanStatusCredentialError ScanStatus = "credential_error"
	ScanStatusCallError       ScanStatus = "call_error"
	ScanStatusInvalidInput    ScanStatus = "invalid_input"
)

// Disclaimer is attached to every verdict.
const Disclaimer = "Best-effort check only. Not medical, religious or nutritional advice; read the label yourself."

type ScanRequest struct {
	Image    []byte
	Filename string
	MIMEType string
}

type SearchRequest struct {
	Query    string `json:"query" form:"query"`
	Image    []byte `json:"-" form:"-"`
	Filename string `json:"-" form:"-"`
	MIMEType string `json:"-" form:"-"`
}

type ScanResponse struct {
	Status     ScanStatus          `json:"status"`
	Mode       string              `json:"mode"`
	Verdict    *verdict.Verdict    `json:"verdict,omitempty"`
	Citations  []llm.Citation      `json:"citations,omitempty"`
	LocalCheck []ingredient.Result `json:"local_check,omitempty"`
	ToolCalls  int                 `json:"tool_calls"`
	Provider   string              `json:"provider,omitempty"`
	Error      string              `json:"error,omitempty"`
	Disclaimer string              `json:"disclaimer"`
}

// OK reports whether a verdict was produced.
func (r *ScanResponse) OK() bool {
	return r.Status == ScanStatusOK
}

// Fail sets a non-ok status and the error text shown to the user.
func (r *ScanResponse) Fail(status ScanStatus, err error) *ScanResponse {
	r.Status = status
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
