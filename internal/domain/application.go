package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks where an application sits in the hiring pipeline.
// The wire values are part of the API contract and must not change.
type Status string

const (
	StatusApplied   Status = "APPLIED"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

// Statuses lists every valid status value.
var Statuses = []Status{StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn}

// ParseStatus converts a wire value into a Status.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// Date is a calendar date serialized as "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date truncated to UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	d.Time = parsed
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Application is a single tracked job application owned by one user.
// UserID is assigned at creation and never reassigned afterwards.
type Application struct {
	ID           int64
	UserID       int64
	Company      string
	RoleTitle    string
	Status       Status
	AppliedDate  Date
	ContactEmail string
	JobURL       string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
