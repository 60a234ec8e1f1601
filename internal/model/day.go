package model

import "time"

// DayOfWeek is the label used for scheduling weekly activities.
type DayOfWeek string

const (
	Sunday    DayOfWeek = "Sunday"
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
)

// DaysOfWeek lists all day labels in week order, starting on Sunday.
var DaysOfWeek = [7]DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// DayFor maps a time.Weekday to its schedule label.
func DayFor(wd time.Weekday) DayOfWeek {
	return DaysOfWeek[int(wd)]
}

// ValidDay reports whether s is one of the seven day labels.
func ValidDay(s DayOfWeek) bool {
	for _, d := range DaysOfWeek {
		if d == s {
			return true
		}
	}
	return false
}
