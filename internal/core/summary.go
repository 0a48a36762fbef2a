package core

import "time"

// DayTotal is the summed amount of one calendar day.
type DayTotal struct {
	Day   time.Time // midnight, location UTC
	Total float64
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category Category
	Total    float64
}
