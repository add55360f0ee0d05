package models

import "time"

// Payment mencatat penyelesaian pembayaran satu order.
// Maksimal satu baris per order; percobaan ulang mengupdate baris yang sama.
type Payment struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	OrderID uint    `gorm:"not null;uniqueIndex" json:"order_id"`
	Order   Order   `gorm:"foreignKey:OrderID" json:"order"`
	Method  string  `gorm:"type:varchar(20);not null;default:'cash'" json:"method"`
	Status  string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Amount  float64 `gorm:"type:decimal(10,2);not null" json:"amount"`

	// FinalAmount adalah nominal yang dikonfirmasi saat settlement (setelah diskon)
	FinalAmount    float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"final_amount"`
	ReferenceID    string     `gorm:"type:varchar(100)" json:"reference_id"`
	GatewayOrderID string     `gorm:"type:varchar(100)" json:"gateway_order_id"`
	VerifiedBy     *uint      `json:"verified_by,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}
