package models

import "time"

type OrderItem struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	OrderID  uint  `gorm:"not null;index" json:"order_id"`
	Order    Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID   uint  `gorm:"not null" json:"menu_id"`
	Menu     Menu  `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`
	Quantity int   `gorm:"not null" json:"quantity"`

	// Price adalah snapshot harga menu saat order dibuat;
	// perubahan harga katalog tidak mempengaruhi item yang sudah ada.
	Price     float64             `gorm:"type:decimal(10,2);not null" json:"price"`
	Notes     string              `gorm:"type:text" json:"notes"`
	Status    string              `gorm:"type:varchar(20);not null;default:'received'" json:"status"`
	Modifiers []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers"`
	CreatedAt time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time           `gorm:"not null" json:"updated_at"`
}

// OrderItemModifier adalah snapshot modifier (nama + selisih harga) saat item dibuat.
// Baris ini tidak pernah diubah setelah insert.
type OrderItemModifier struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderItemID uint    `gorm:"not null;index" json:"order_item_id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	PriceDelta  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"price_delta"`
}

// Subtotal menghitung kontribusi item terhadap total order.
func (oi *OrderItem) Subtotal() float64 {
	unit := oi.Price
	for _, m := range oi.Modifiers {
		unit += m.PriceDelta
	}
	return float64(oi.Quantity) * unit
}
