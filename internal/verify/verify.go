// Package verify checks a claimant's police report before a finder's contact is revealed.
package verify

import (
	"context"
	"errors"
)

const MsgUnreadable = "The report image was too blurry or the text was unreadable. Please try a clearer scan or photo."

var ErrNoDocument = errors.New("please select the police report/FIR image first")

// Document is an uploaded report image.
type Document struct {
	Image    []byte
	MimeType string
}

// Result is the outcome of one verification. Reason is set when Verified is false.
type Result struct {
	Verified        bool   `json:"verified" yaml:"verified"`
	CaseID          string `json:"case_id,omitempty" yaml:"case_id,omitempty"`
	FileDate        string `json:"file_date,omitempty" yaml:"file_date,omitempty"`
	ComplainantName string `json:"complainant_name,omitempty" yaml:"complainant_name,omitempty"`
	Reason          string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Provider interface {
	Verify(ctx context.Context, doc Document) (*Result, error)
}

func unverified(reason string) *Result {
	return &Result{Reason: reason}
}
