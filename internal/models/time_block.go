package models

import "time"

// TimeBlock is an ad-hoc blackout window (vacation, personal). Absolute
// datetimes, any span, may cross midnight.
type TimeBlock struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index" json:"barber_id"`

	StartDatetime time.Time `gorm:"not null" json:"start_datetime"`
	EndDatetime   time.Time `gorm:"not null" json:"end_datetime"`

	Reason string `gorm:"size:50" json:"reason"`
	Note   string `gorm:"size:255" json:"note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
