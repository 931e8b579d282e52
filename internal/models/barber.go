package models

import "time"

// Barber is the bookable provider. ShopID is nil for freelancers; the
// commission split depends on that affiliation at commit time.
type Barber struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user"`

	ShopID *uint `json:"shop_id"`
	Shop   *Shop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"shop,omitempty"`

	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	Bio         string `gorm:"size:255" json:"bio"`
	Active      bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Barber) IsFreelancer() bool {
	return b.ShopID == nil
}
