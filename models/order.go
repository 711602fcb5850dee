package models

import (
	"fmt"
	"time"
)

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	RestaurantID  uint        `gorm:"not null;index" json:"restaurant_id"`
	Restaurant    Restaurant  `gorm:"foreignKey:RestaurantID" json:"restaurant"`
	SessionKey    string      `gorm:"type:varchar(64);index" json:"session_key"`
	CustomerName  string      `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail string      `gorm:"type:varchar(255)" json:"customer_email"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	Subtotal      int64       `gorm:"not null;default:0" json:"subtotal"`
	Tax           int64       `gorm:"not null;default:0" json:"tax"`
	ServiceFee    int64       `gorm:"not null;default:0" json:"service_fee"`
	DeliveryFee   int64       `gorm:"not null;default:0" json:"delivery_fee"`
	Total         int64       `gorm:"not null;default:0" json:"total"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}

// PaymentReference is the order identifier sent to the payment gateway.
func (o *Order) PaymentReference() string {
	return fmt.Sprintf("OTTER-%d-%d", o.RestaurantID, o.ID)
}
