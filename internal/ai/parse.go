package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	ErrParseFailed = errors.New("parse_failed")
)

// DocumentFields are the values read off a police report.
type DocumentFields struct {
	CaseID          string `json:"case_id"`
	FileDate        string `json:"file_date"`
	ComplainantName string `json:"complainant_name"`
}

// Empty reports whether nothing was extracted.
func (f DocumentFields) Empty() bool {
	return f.CaseID == "" && f.FileDate == "" && f.ComplainantName == ""
}

// ParseDocumentFields pulls the JSON object out of a model reply. It accepts a bare
// object, one wrapped in a ```json fence, or one surrounded by prose.
func ParseDocumentFields(text string) (*DocumentFields, error) {
	raw, err := extractObject(text)
	if err != nil {
		return nil, err
	}
	var f DocumentFields
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	f.CaseID = strings.TrimSpace(f.CaseID)
	f.FileDate = strings.TrimSpace(f.FileDate)
	f.ComplainantName = strings.TrimSpace(f.ComplainantName)
	return &f, nil
}

func extractObject(text string) (string, error) {
	if m := fencePattern.FindStringSubmatch(text); len(m) >= 2 {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return "", fmt.Errorf("%w: no json object found", ErrParseFailed)
	}
	return text[start : end+1], nil
}

// truncate shortens model output for logs.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
