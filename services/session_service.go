package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/utils"
)

// SessionService membuka dan menutup sesi meja. Penutupan hanya terjadi
// lewat penyelesaian order (OrderService.CompleteOrderTx).
type SessionService struct {
	db *gorm.DB
	qr *QRService
}

func NewSessionService(db *gorm.DB, qr *QRService) *SessionService {
	return &SessionService{db: db, qr: qr}
}

// Admit memvalidasi token QR lalu memakai ulang sesi open meja itu, atau
// membuka sesi baru. Sengaja permisif: siapa pun pemegang token valid untuk
// sesi yang open boleh ikut memesan (tamu di meja yang sama).
//
// Maksimal satu sesi open per meja ditegakkan oleh unique index pada
// open_table_id, bukan oleh pembacaan di sini: dua scan yang balapan
// berakhir dengan satu insert sukses dan satu pecundang yang memakai
// ulang sesi milik pemenang.
func (s *SessionService) Admit(tableID uint, token string) (*models.TableSession, error) {
	table, err := s.qr.VerifyAccess(tableID, token)
	if err != nil {
		return nil, err
	}

	var session models.TableSession
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("table_id = ? AND status = ?", table.ID, SessionStatusOpen).
			First(&session).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		now := time.Now()
		session = models.TableSession{
			TableID:     table.ID,
			OpenTableID: &table.ID,
			Status:      SessionStatusOpen,
			OpenedAt:    now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("Session %d opened for table %s", session.ID, table.TableNumber)
		return nil
	})
	if err != nil {
		// Kalah balapan pembukaan sesi: insert ditolak unique index,
		// pakai sesi open yang dimenangkan penulis lain.
		var existing models.TableSession
		if lookupErr := s.db.Where("table_id = ? AND status = ?", table.ID, SessionStatusOpen).
			First(&existing).Error; lookupErr == nil {
			existing.Table = *table
			return &existing, nil
		}
		return nil, err
	}

	session.Table = *table
	return &session, nil
}

// ActiveSession mengembalikan sesi open milik sebuah meja, jika ada.
func (s *SessionService) ActiveSession(tableID uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := s.db.Preload("Table").
		Where("table_id = ? AND status = ?", tableID, SessionStatusOpen).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession memuat satu sesi berdasarkan ID.
func (s *SessionService) GetSession(sessionID uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := s.db.Preload("Table").First(&session, sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}
