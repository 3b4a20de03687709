package dto

import (
	"strconv"
	"time"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// Visitor status labels.
const (
	StatusActive     = "Active"
	StatusCheckedOut = "Checked Out"
)

// CreateVisitorRequest payload for check-in.
type CreateVisitorRequest struct {
	VisitorName         string  `json:"visitor_name"`
	PhoneNumber         string  `json:"phone_number"`
	VisitorProfile      string  `json:"visitor_profile"`
	VisitorProfileOther *string `json:"visitor_profile_other"`
	StaffID             int64   `json:"staff_id"`
}

// UpdateVisitorRequest payload for partial visitor updates.
type UpdateVisitorRequest struct {
	VisitorName         *string `json:"visitor_name"`
	PhoneNumber         *string `json:"phone_number"`
	VisitorProfile      *string `json:"visitor_profile"`
	VisitorProfileOther *string `json:"visitor_profile_other"`
	StaffID             *int64  `json:"staff_id"`
}

// VisitorRow is the flattened visitor shape used by tables and exports.
type VisitorRow struct {
	ID                  int64   `json:"id"`
	VisitorName         string  `json:"visitor_name"`
	PhoneNumber         string  `json:"phone_number"`
	VisitorProfile      string  `json:"visitor_profile"`
	VisitorProfileOther *string `json:"visitor_profile_other"`
	Status              string  `json:"status"`
	CheckInDate         string  `json:"check_in_date"`
	CheckInTime         string  `json:"check_in_time"`
	CheckOutDate        string  `json:"check_out_date"`
	CheckOutTime        string  `json:"check_out_time"`
	StaffName           string  `json:"staff_name"`
	StaffPhone          string  `json:"staff_phone"`
	StaffID             *int64  `json:"staff_id"`
}

// VisitorStatsResponse summarises visitor traffic.
type VisitorStatsResponse struct {
	TotalVisitors     int64                        `json:"totalVisitors"`
	VisitorsByProfile []domain.VisitorProfileCount `json:"visitorsByProfile"`
	CheckedOutCount   int64                        `json:"checkedOutCount"`
	ActiveVisitors    int64                        `json:"activeVisitors"`
	RecentVisitors    []VisitorRow                 `json:"recentVisitors"`
}

// CSVHeader lists export columns in order.
var CSVHeader = []string{
	"ID", "Visitor Name", "Phone Number", "Profile", "Profile Detail",
	"Staff Name", "Staff Phone", "Check-in Date", "Check-in Time",
	"Check-out Date", "Check-out Time", "Status",
}

// NewVisitorRow flattens v, rendering dates and times in loc.
func NewVisitorRow(v *domain.Visitor, loc *time.Location) VisitorRow {
	if loc == nil {
		loc = time.UTC
	}
	row := VisitorRow{
		ID:                  v.ID,
		VisitorName:         v.VisitorName,
		PhoneNumber:         v.PhoneNumber,
		VisitorProfile:      string(v.VisitorProfile),
		VisitorProfileOther: v.VisitorProfileOther,
		Status:              StatusActive,
		StaffName:           orDash(v.StaffName),
		StaffPhone:          orDash(v.StaffPhone),
		StaffID:             v.StaffID,
	}
	if !v.CreatedAt.IsZero() {
		row.CheckInDate, row.CheckInTime = splitTimestamp(v.CreatedAt, loc)
	}
	if v.CheckedOutAt != nil {
		row.Status = StatusCheckedOut
		row.CheckOutDate, row.CheckOutTime = splitTimestamp(*v.CheckedOutAt, loc)
	}
	return row
}

func NewVisitorRows(visitors []domain.Visitor, loc *time.Location) []VisitorRow {
	out := make([]VisitorRow, 0, len(visitors))
	for i := range visitors {
		out = append(out, NewVisitorRow(&visitors[i], loc))
	}
	return out
}

func NewVisitorStatsResponse(stats *domain.VisitorStats, loc *time.Location) VisitorStatsResponse {
	return VisitorStatsResponse{
		TotalVisitors:     stats.TotalVisitors,
		VisitorsByProfile: stats.VisitorsByProfile,
		CheckedOutCount:   stats.CheckedOutCount,
		ActiveVisitors:    stats.ActiveVisitors,
		RecentVisitors:    NewVisitorRows(stats.RecentVisitors, loc),
	}
}

// CSVRecord returns the row in CSVHeader order.
func (r VisitorRow) CSVRecord() []string {
	detail := ""
	if r.VisitorProfileOther != nil {
		detail = *r.VisitorProfileOther
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.VisitorName,
		r.PhoneNumber,
		r.VisitorProfile,
		detail,
		r.StaffName,
		r.StaffPhone,
		r.CheckInDate,
		r.CheckInTime,
		r.CheckOutDate,
		r.CheckOutTime,
		r.Status,
	}
}

func splitTimestamp(t time.Time, loc *time.Location) (string, string) {
	local := t.In(loc)
	return local.Format("2006-01-02"), local.Format("15:04:05")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
