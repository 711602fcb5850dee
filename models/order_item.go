package models

import "time"

// OrderItem snapshots one cart line item at checkout time: the menu name and
// unit price are copied so later menu edits never rewrite past orders.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order     Order             `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID    uint              `gorm:"not null" json:"menu_id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice int64             `gorm:"not null" json:"unit_price"`
	Quantity  int               `gorm:"not null" json:"quantity"`
	Note      string            `gorm:"type:text" json:"note"`
	LineTotal int64             `gorm:"not null" json:"line_total"`
	Options   []OrderItemOption `gorm:"foreignKey:OrderItemID" json:"options"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

type OrderItemOption struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderItemID  uint      `gorm:"not null;index" json:"order_item_id"`
	OptionID     uint      `gorm:"not null" json:"option_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	CategoryName string    `gorm:"type:varchar(100)" json:"category_name"`
	Price        int64     `gorm:"not null;default:0" json:"price"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
