package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinancialBreakdown is the commission split snapshot attached to a
// booking at commit time. Stored as JSON; amounts are in the shop
// currency, already rounded to cents and guaranteed to satisfy
// Gross == PlatformFee + ProviderNet.
type FinancialBreakdown struct {
	Gross       float64 `json:"gross"`
	PlatformFee float64 `json:"platform_fee"`
	ProviderNet float64 `json:"provider_net"`
	RuleName    string  `json:"rule_name"`
	Rate        float64 `json:"rate"`
}

type Booking struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PublicID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"public_id"`

	BarberID uint   `gorm:"index" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber"`

	// Nullable back-reference for lookup only; deleting a client account
	// must never delete historical bookings.
	ClientID *uint `gorm:"index" json:"client_id"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status        string `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"size:20;default:'unpaid'" json:"payment_status"`
	PaymentRef    string `gorm:"size:64" json:"payment_ref,omitempty"`

	PriceAtBooking     float64            `json:"price_at_booking"`
	FinancialBreakdown FinancialBreakdown `gorm:"serializer:json" json:"financial_breakdown"`

	Services []BookingService `gorm:"constraint:OnDelete:CASCADE;" json:"services"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.PublicID == uuid.Nil {
		b.PublicID = uuid.New()
	}
	return nil
}

// BookingService is an immutable line item: name, price and duration are
// snapshots captured at booking time, not live references.
type BookingService struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"index" json:"booking_id"`
	ServiceID uint `json:"service_id"`

	Name        string  `gorm:"size:100" json:"name"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_min"`
}
