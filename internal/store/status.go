package store

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Status string

const (
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusUnknown   Status = "unknown"
)

var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusUnknown}

// ParseStatus accepts any of the known statuses case-insensitively. An empty
// value means the application has not been triaged yet.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return StatusUnknown, nil
	}
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", raw)}
	}
	return s, nil
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label is the human-readable name shown on the dashboard.
func (s Status) Label() string {
	switch s {
	case StatusUnknown:
		return "Not processed"
	case "":
		return "Not set"
	}
	return cases.Title(language.English).String(string(s))
}
