package models

import "time"

// PricingRule is owned by platform administration and read-only to the
// scheduling core. At most one rule should be active at a time.
type PricingRule struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100" json:"name"`

	CommissionFreelancer float64 `gorm:"default:0.10" json:"commission_freelancer"`
	CommissionShop       float64 `gorm:"default:0.05" json:"commission_shop"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
