// internal/models/case.go
package models

import "strings"

// Placeholder identifiers used when a request omits them.
const (
	DefaultCaseID    = "UNKNOWN"
	DefaultCaseName  = "Unknown Case"
	DefaultIssueArea = "general"
)

// CaseInput is the read-only case record consumed by the ensemble.
type CaseInput struct {
	CaseID    string
	CaseName  string
	IssueArea string
	Text      string
}

// CaseRequest is the raw payload accepted by every transport.
type CaseRequest struct {
	CaseID      string `json:"case_id"`
	CaseName    string `json:"case_name"`
	IssueArea   string `json:"issue_area"`
	OpinionText string `json:"opinion_text"`
	Petitioner  string `json:"petitioner,omitempty"`
	Respondent  string `json:"respondent,omitempty"`
}

// ToCaseInput applies the default-value policy: blank identifiers are replaced
// by their placeholders, the text body is passed through untouched.
func (r CaseRequest) ToCaseInput() CaseInput {
	return CaseInput{
		CaseID:    orDefault(r.CaseID, DefaultCaseID),
		CaseName:  orDefault(r.CaseName, DefaultCaseName),
		IssueArea: orDefault(r.IssueArea, DefaultIssueArea),
		Text:      r.OpinionText,
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
