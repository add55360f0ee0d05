package models

import "time"

type Table struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TableNumber string `gorm:"type:varchar(50);not null;uniqueIndex" json:"table_number"`
	Capacity    int    `gorm:"not null;default:2" json:"capacity"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	// QRSecret menandatangani token akses meja; tidak pernah dikirim ke client
	QRSecret  string    `gorm:"type:varchar(255);not null" json:"-"`
	QRVersion uint      `gorm:"not null;default:1" json:"qr_version"`
	StaffID   *uint     `gorm:"index" json:"staff_id,omitempty"`
	Staff     *User     `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
