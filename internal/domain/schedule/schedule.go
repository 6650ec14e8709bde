package schedule

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday is the English day name an availability window recurs on. Day names
// are derived from time.Weekday, never from a user locale.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

func (d Weekday) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// WeekdayOf maps an instant to its day name in the instant's own location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday().String())
}

// Clinic-wide booking bounds. Windows and appointments both live inside
// [OpeningHour:00, ClosingHour:00]; ClosingHour:00 exactly is the last
// permitted appointment start.
const (
	OpeningHour = 9
	ClosingHour = 17
)

// WithinBusinessHours reports whether an appointment may start at the given
// local hour and minute. Anything from ClosingHour:01 onward is out, but
// ClosingHour:00 exactly is in.
func WithinBusinessHours(hour, minute int) bool {
	if hour < OpeningHour {
		return false
	}
	if hour >= ClosingHour && minute > 0 {
		return false
	}
	return true
}

// HourMinute is a wall-clock time of day, stored as "HH:MM".
type HourMinute struct {
	Hour   int
	Minute int
}

func ParseHourMinute(s string) (HourMinute, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return HourMinute{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return HourMinute{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return HourMinute{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return HourMinute{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return HourMinute{Hour: hour, Minute: minute}, nil
}

func (hm HourMinute) String() string {
	return fmt.Sprintf("%02d:%02d", hm.Hour, hm.Minute)
}

func (hm HourMinute) MinuteOfDay() int {
	return hm.Hour*60 + hm.Minute
}

func (hm HourMinute) Before(other HourMinute) bool {
	return hm.MinuteOfDay() < other.MinuteOfDay()
}

func (hm HourMinute) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(hm.String())), nil
}

func (hm *HourMinute) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeFormat, data)
	}
	parsed, err := ParseHourMinute(s)
	if err != nil {
		return err
	}
	*hm = parsed
	return nil
}

func (hm HourMinute) Value() (driver.Value, error) {
	return hm.String(), nil
}

func (hm *HourMinute) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseHourMinute(v)
		if err != nil {
			return err
		}
		*hm = parsed
		return nil
	case []byte:
		return hm.Scan(string(v))
	default:
		return fmt.Errorf("scanning HourMinute: unsupported type %T", src)
	}
}

// AvailabilityWindow is one recurring weekly slot a doctor offers. A doctor
// has at most one window per weekday.
type AvailabilityWindow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	DoctorID  uuid.UUID  `gorm:"column:doctor_id;type:uuid;not null;uniqueIndex:idx_windows_doctor_day" json:"doctorId"`
	Day       Weekday    `gorm:"column:day;type:varchar(10);not null;uniqueIndex:idx_windows_doctor_day" json:"day"`
	StartTime HourMinute `gorm:"column:start_time;type:varchar(5);not null" json:"startTime"`
	EndTime   HourMinute `gorm:"column:end_time;type:varchar(5);not null" json:"endTime"`
}

func (AvailabilityWindow) TableName() string {
	return "clinical.availability_windows"
}

// Covers reports whether a time of day falls inside the window. The end is
// exclusive: the exact end instant is never bookable.
func (w *AvailabilityWindow) Covers(hour, minute int) bool {
	offered := hour*60 + minute
	return offered >= w.StartTime.MinuteOfDay() && offered < w.EndTime.MinuteOfDay()
}

// ValidateBounds enforces the creation-time invariants: start before end,
// both inside clinic hours, both on the hour. The update path intentionally
// does not call this (matching the platform's observed behavior).
func (w *AvailabilityWindow) ValidateBounds() error {
	if !w.Day.IsValid() {
		return fmt.Errorf("%w: unknown day %q", ErrInvalidWindow, w.Day)
	}
	if w.StartTime.Minute != 0 || w.EndTime.Minute != 0 {
		return ErrWindowNotHourAligned
	}
	if w.StartTime.Hour < OpeningHour || w.EndTime.Hour > ClosingHour || !w.StartTime.Before(w.EndTime) {
		return ErrWindowOutOfHours
	}
	return nil
}

type CreateWindowCommand struct {
	DoctorID  uuid.UUID
	Day       Weekday
	StartTime HourMinute
	EndTime   HourMinute
}

type UpdateWindowCommand struct {
	Day       Weekday
	StartTime HourMinute
	EndTime   HourMinute
}
