package models

import "time"

// TableSession mengikat satu meja ke satu kunjungan tamu.
// Maksimal satu sesi 'open' per meja; sesi hanya ditutup lewat penyelesaian order.
type TableSession struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TableID   uint       `gorm:"not null;index" json:"table_id"`
	Table     Table      `gorm:"foreignKey:TableID" json:"table"`
	Status    string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	OpenedAt  time.Time  `gorm:"not null" json:"opened_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`

	// OpenTableID berisi TableID selama sesi open dan NULL setelah tertutup;
	// unique index di kolom ini yang menegakkan maksimal satu sesi open per meja.
	OpenTableID *uint `gorm:"uniqueIndex" json:"-"`
}
