package models

import "time"

type Restaurant struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug              string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Address           string    `gorm:"type:text" json:"address"`
	ImageUrl          *string   `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	TaxPercentage     float64   `gorm:"type:decimal(5,2);not null;default:0" json:"tax_percentage"`
	ServicePercentage float64   `gorm:"type:decimal(5,2);not null;default:0" json:"service_percentage"`
	IsOpen            bool      `gorm:"not null;default:true" json:"is_open"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}
