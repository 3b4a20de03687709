package service

import (
	"strings"
	"time"

	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// Time range presets accepted by visitor listings.
const (
	RangeToday      = "today"
	RangeLast7Days  = "last7days"
	RangeLast30Days = "last30days"
	RangeCustom     = "custom"
)

const dateLayout = "2006-01-02"

// TimeRange is a resolved pair of optional bounds.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// ResolveTimeRange turns a preset and optional explicit bounds into a range
// in loc. Without a preset the explicit bounds are used as given. An unknown
// preset yields an open range.
func ResolveTimeRange(preset, dateFrom, dateTo string, now time.Time, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "":
		return explicitRange(dateFrom, dateTo, loc)
	case RangeToday:
		end := startOfDay.AddDate(0, 0, 1)
		return TimeRange{From: &startOfDay, To: &end}, nil
	case RangeLast7Days:
		from := startOfDay.AddDate(0, 0, -7)
		return TimeRange{From: &from, To: &now}, nil
	case RangeLast30Days:
		from := startOfDay.AddDate(0, 0, -30)
		return TimeRange{From: &from, To: &now}, nil
	case RangeCustom:
		return explicitRange(dateFrom, dateTo, loc)
	default:
		return TimeRange{}, nil
	}
}

func explicitRange(dateFrom, dateTo string, loc *time.Location) (TimeRange, error) {
	var out TimeRange
	if dateFrom != "" {
		from, _, err := parseBound(dateFrom, loc)
		if err != nil {
			return TimeRange{}, apperrors.NewBadRequest("Invalid dateFrom", "")
		}
		out.From = &from
	}
	if dateTo != "" {
		to, dateOnly, err := parseBound(dateTo, loc)
		if err != nil {
			return TimeRange{}, apperrors.NewBadRequest("Invalid dateTo", "")
		}
		if dateOnly {
			// A bare date covers the whole day.
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		out.To = &to
	}
	return out, nil
}

// parseBound accepts RFC3339 timestamps or YYYY-MM-DD dates.
func parseBound(value string, loc *time.Location) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	return t, err == nil, err
}
