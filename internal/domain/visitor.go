package domain

import "time"

// VisitorProfile classifies why a visitor is on site.
type VisitorProfile string

const (
	VisitorProfilePlayer  VisitorProfile = "Player"
	VisitorProfileVisitor VisitorProfile = "Visitor"
	VisitorProfileOther   VisitorProfile = "Other"
)

// Valid reports whether p is one of the known profiles.
func (p VisitorProfile) Valid() bool {
	switch p {
	case VisitorProfilePlayer, VisitorProfileVisitor, VisitorProfileOther:
		return true
	}
	return false
}

// Visitor is a single check-in record. StaffName and StaffPhone are joined
// from the host staff row when the record is read.
type Visitor struct {
	ID                  int64
	VisitorName         string
	PhoneNumber         string
	VisitorProfile      VisitorProfile
	VisitorProfileOther *string
	StaffID             *int64
	StaffName           *string
	StaffPhone          *string
	CheckedOutAt        *time.Time
	CreatedAt           time.Time
	ModifiedAt          time.Time
}

// CheckedOut reports whether the visitor has left.
func (v *Visitor) CheckedOut() bool {
	return v.CheckedOutAt != nil
}

// VisitorProfileCount is one bucket of the by-profile breakdown.
type VisitorProfileCount struct {
	VisitorProfile VisitorProfile `json:"visitor_profile"`
	Count          int64          `json:"_count"`
}

// VisitorStats summarises visitor traffic for a date range.
type VisitorStats struct {
	TotalVisitors     int64
	VisitorsByProfile []VisitorProfileCount
	CheckedOutCount   int64
	ActiveVisitors    int64
	RecentVisitors    []Visitor
}
