package models

import "time"

type Order struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	SessionID uint         `gorm:"not null;index" json:"session_id"`
	Session   TableSession `gorm:"foreignKey:SessionID" json:"session"`
	Status    string       `gorm:"type:varchar(20);not null;default:'received'" json:"status"`
	// TotalAmount dihitung ulang dari item yang tidak cancelled
	TotalAmount   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	BillRequested bool        `gorm:"not null;default:false" json:"bill_requested"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
