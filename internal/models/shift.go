package models

import "time"

// Shift is one recurring weekly availability window. A barber may have
// several rows for the same weekday (split shifts); windows are merged
// when expanded, never validated against each other at write time.
type Shift struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index:idx_shifts_barber_day" json:"barber_id"`

	// 0 = Sunday .. 6 = Saturday, matching time.Weekday.
	Weekday int `gorm:"index:idx_shifts_barber_day" json:"weekday"`

	StartTime string `gorm:"size:5;not null" json:"start_time"` // "HH:MM"
	EndTime   string `gorm:"size:5;not null" json:"end_time"`   // "HH:MM", same day

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
