package models

import "time"

// MenuOptionCategory groups the choices a customer can make for a menu item,
// e.g. "Sugar Level" or "Topping". MinAmount/MaxAmount bound how many options
// may be picked from the group; Type is "single" or "multiple".
type MenuOptionCategory struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	MenuID    uint         `gorm:"not null;index" json:"menu_id"`
	Name      string       `gorm:"type:varchar(100);not null" json:"name"`
	Type      string       `gorm:"type:varchar(20);not null;default:'single'" json:"type"`
	MinAmount int          `gorm:"not null;default:0" json:"min_amount"`
	MaxAmount int          `gorm:"not null;default:1" json:"max_amount"`
	Options   []MenuOption `gorm:"foreignKey:CategoryID" json:"options"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

type MenuOption struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Price         int64     `gorm:"not null;default:0" json:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
