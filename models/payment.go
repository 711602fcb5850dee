package models

import "time"

// Payment represents a QRIS payment transaction for an order
type Payment struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	OrderID       uint       `json:"order_id" gorm:"not null;index"`
	Order         Order      `json:"order" gorm:"foreignKey:OrderID"`
	Amount        int64      `json:"amount" gorm:"not null"`
	Status        string     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentMethod string     `json:"payment_method" gorm:"type:varchar(20);not null;default:'qris'"`
	ReferenceID   string     `json:"reference_id" gorm:"type:varchar(100);index"`
	QRCode        string     `json:"qr_code" gorm:"type:text"`     // Raw QR code data for QRIS
	QRImageURL    string     `json:"qr_image_url" gorm:"type:text"` // URL to QR code image
	PaymentTime   *time.Time `json:"payment_time"`                 // Time when payment was settled
	ExpiredAt     *time.Time `json:"expired_at"`                   // Time when payment will expire (nullable)
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
