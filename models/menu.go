package models

import "time"

// Menu is one orderable item on a restaurant's menu. Prices are stored in
// the smallest currency unit (whole rupiah), never as fractions.
type Menu struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	RestaurantID     uint                 `gorm:"not null;index" json:"restaurant_id"`
	Restaurant       Restaurant           `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Category         string               `gorm:"type:varchar(100)" json:"category"`
	Name             string               `gorm:"type:varchar(255);not null" json:"name"`
	Description      string               `gorm:"type:text" json:"description"`
	Price            int64                `gorm:"not null" json:"price"`
	DiscountPrice    *int64               `json:"discount_price,omitempty"`
	ImageUrl         *string              `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	Stock            int                  `json:"stock"`
	OptionCategories []MenuOptionCategory `gorm:"foreignKey:MenuID" json:"menu_option_category"`
	CreatedAt        time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"not null" json:"updated_at"`
}
