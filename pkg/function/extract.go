package function

import (
	"strings"
	"time"

	"github.com/marmos91/dbrt/pkg/value"
)

// ExtractField names the datetime component Extract pulls out.
type ExtractField int

const (
	ExtractYear ExtractField = iota
	ExtractMonth
	ExtractDay
	ExtractHour
	ExtractMinute
	ExtractSecond
	ExtractMillisecond
)

func (f ExtractField) String() string {
	switch f {
	case ExtractYear:
		return "YEAR"
	case ExtractMonth:
		return "MONTH"
	case ExtractDay:
		return "DAY"
	case ExtractHour:
		return "HOUR"
	case ExtractMinute:
		return "MINUTE"
	case ExtractSecond:
		return "SECOND"
	case ExtractMillisecond:
		return "MILLISECOND"
	default:
		return "UNKNOWN"
	}
}

var dateLayouts = []string{"2006-01-02"}
var datetimeLayouts = []string{"2006-01-02 15:04:05.000", "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
var timeLayouts = []string{"15:04:05"}

// parseDatetimeString tries date, then datetime, then time layouts in that
// order, the casting precedence a VARCHAR argument to Extract follows.
func parseDatetimeString(s string) (value.Value, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return value.MakeDate(value.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}), true
		}
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ms := (t.Hour()*3600+t.Minute()*60+t.Second())*1000 + t.Nanosecond()/1_000_000
			return value.MakeDatetime(value.Datetime{
				Date: value.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()},
				MS:   ms,
			}), true
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return value.MakeTime(value.Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}), true
		}
	}
	return value.Value{}, false
}

// Extract pulls field out of v, which must be DATE, TIME or DATETIME, or a
// VARCHAR parseable as one of those in date/datetime/time order.
func Extract(field ExtractField, v value.Value) (value.Value, error) {
	if v.IsNull {
		return value.MakeNull(), nil
	}

	target := v
	if v.Domain == value.DomainVarchar {
		buf, _ := v.GetVarchar()
		parsed, ok := parseDatetimeString(string(buf))
		if !ok {
			return value.Value{}, argError("extract")
		}
		target = parsed
	}

	switch target.Domain {
	case value.DomainDate:
		d, _ := target.GetDate()
		return extractFromDate(field, d)
	case value.DomainTime:
		t, _ := target.GetTime()
		return extractFromTime(field, t)
	case value.DomainDatetime:
		dt, _ := target.GetDatetime()
		return extractFromDatetime(field, dt)
	default:
		return value.Value{}, argError("extract")
	}
}

func extractFromDate(field ExtractField, d value.Date) (value.Value, error) {
	switch field {
	case ExtractYear:
		return value.MakeInteger(int32(d.Year)), nil
	case ExtractMonth:
		return value.MakeInteger(int32(d.Month)), nil
	case ExtractDay:
		return value.MakeInteger(int32(d.Day)), nil
	default:
		return value.Value{}, argError("extract " + field.String() + " from DATE")
	}
}

func extractFromTime(field ExtractField, t value.Time) (value.Value, error) {
	switch field {
	case ExtractHour:
		return value.MakeInteger(int32(t.Hour)), nil
	case ExtractMinute:
		return value.MakeInteger(int32(t.Minute)), nil
	case ExtractSecond:
		return value.MakeInteger(int32(t.Second)), nil
	case ExtractMillisecond:
		return value.MakeInteger(int32(t.Millisecond)), nil
	default:
		return value.Value{}, argError("extract " + field.String() + " from TIME")
	}
}

func extractFromDatetime(field ExtractField, dt value.Datetime) (value.Value, error) {
	switch field {
	case ExtractYear, ExtractMonth, ExtractDay:
		return extractFromDate(field, dt.Date)
	default:
		ms := dt.MS
		t := value.Time{
			Hour:        ms / 3_600_000,
			Minute:      (ms / 60_000) % 60,
			Second:      (ms / 1000) % 60,
			Millisecond: ms % 1000,
		}
		return extractFromTime(field, t)
	}
}
