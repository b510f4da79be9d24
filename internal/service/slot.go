package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/circleed-client/internal/models"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseSlotClock parses labels such as "10:00 AM", "2 PM" or "14:30".
func ParseSlotClock(label string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, fmt.Errorf("invalid time slot %q", label)
	}

	clock := fields[0]
	meridiem := ""
	if len(fields) == 2 {
		meridiem = strings.ToUpper(fields[1])
	}

	hourPart, minutePart, hasMinutes := strings.Cut(clock, ":")
	hour, err = strconv.Atoi(hourPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in time slot %q", label)
	}
	if hasMinutes {
		if minute, err = strconv.Atoi(minutePart); err != nil || minute < 0 || minute > 59 {
			return 0, 0, fmt.Errorf("invalid minute in time slot %q", label)
		}
	}

	switch meridiem {
	case "":
		if hour < 0 || hour > 23 {
			return 0, 0, fmt.Errorf("invalid hour in time slot %q", label)
		}
	case "AM", "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("invalid hour in time slot %q", label)
		}
		if meridiem == "PM" && hour != 12 {
			hour += 12
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		}
	default:
		return 0, 0, fmt.Errorf("invalid meridiem in time slot %q", label)
	}
	return hour, minute, nil
}

// NextSlotTime returns the next occurrence of day at slot strictly after now,
// in now's location. A slot later today is used as is; otherwise the date
// moves a week ahead.
func NextSlotTime(now time.Time, day, slot string) (time.Time, error) {
	weekday, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown weekday %q", day)
	}
	hour, minute, err := ParseSlotClock(slot)
	if err != nil {
		return time.Time{}, err
	}

	daysAhead := (int(weekday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+daysAhead, hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate, nil
}

// SlotOffered reports whether the skill lists slot on day. Skills without
// availability accept any slot.
func SlotOffered(skill models.Skill, day, slot string) bool {
	if len(skill.Availability) == 0 {
		return true
	}
	for _, a := range skill.Availability {
		if !strings.EqualFold(a.Day, day) {
			continue
		}
		for _, s := range a.TimeSlots {
			if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(slot)) {
				return true
			}
		}
	}
	return false
}
