package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/utils"
)

// Token QR dicetak di meja fisik, jadi masa berlakunya panjang;
// pencabutan dilakukan lewat rotasi secret+versi, bukan expiry.
const qrTokenTTL = 365 * 24 * time.Hour

// QRService memegang identitas meja dan skema secret/versi QR yang berotasi.
type QRService struct {
	db *gorm.DB
}

func NewQRService(db *gorm.DB) *QRService {
	return &QRService{db: db}
}

// QRClaims hanya membawa versi QR meja. ID meja ada di URL dan mengikat
// token ke secret meja tersebut saat verifikasi.
type QRClaims struct {
	QRVersion uint `json:"qr_version"`
	jwt.RegisteredClaims
}

// NewQRSecret menghasilkan secret acak 32 byte (hex).
func NewQRSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// IssueToken menandatangani token akses untuk versi QR meja saat ini.
// Secret meja tidak pernah ikut keluar; hanya token dan URL scan-nya.
func (s *QRService) IssueToken(table *models.Table) (string, error) {
	claims := &QRClaims{
		QRVersion: table.QRVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(qrTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "DineInApp",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(table.QRSecret))
}

// VerifyAccess memverifikasi token tamu terhadap secret meja SAAT INI.
// Rotasi berarti token lama gagal di signature (secret beda) bahkan
// sebelum cek versi.
func (s *QRService) VerifyAccess(tableID uint, tokenString string) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, ErrTableInactive
	}

	token, err := jwt.ParseWithClaims(tokenString, &QRClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(table.QRSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*QRClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.QRVersion != table.QRVersion {
		return nil, ErrStaleToken
	}

	return &table, nil
}

// RegenerateQR merotasi pasangan secret/versi dalam SATU statement UPDATE,
// sehingga verifikasi yang balapan tidak pernah melihat pasangan setengah
// jadi. Mengembalikan token baru yang siap dicetak.
func (s *QRService) RegenerateQR(tableID uint) (*models.Table, string, error) {
	secret, err := NewQRSecret()
	if err != nil {
		return nil, "", err
	}

	res := s.db.Model(&models.Table{}).Where("id = ?", tableID).
		Updates(map[string]interface{}{
			"qr_secret":  secret,
			"qr_version": gorm.Expr("qr_version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, "", res.Error
	}
	if res.RowsAffected == 0 {
		return nil, "", gorm.ErrRecordNotFound
	}

	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(&table)
	if err != nil {
		return nil, "", err
	}

	utils.InfoLogger.Printf("QR rotated for table %s (version %d)", table.TableNumber, table.QRVersion)
	return &table, token, nil
}

// RegenerateResult adalah hasil rotasi per meja pada operasi massal.
type RegenerateResult struct {
	TableID     uint   `json:"table_id"`
	TableNumber string `json:"table_number"`
	QRVersion   uint   `json:"qr_version,omitempty"`
	Token       string `json:"token,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RegenerateAll merotasi setiap meja secara independen; kegagalan satu meja
// tidak membatalkan sisanya.
func (s *QRService) RegenerateAll() ([]RegenerateResult, error) {
	var tables []models.Table
	if err := s.db.Find(&tables).Error; err != nil {
		return nil, err
	}

	results := make([]RegenerateResult, 0, len(tables))
	for _, t := range tables {
		result := RegenerateResult{TableID: t.ID, TableNumber: t.TableNumber}
		rotated, token, err := s.RegenerateQR(t.ID)
		if err != nil {
			result.Error = err.Error()
			utils.ErrorLogger.Printf("QR rotation failed for table %s: %v", t.TableNumber, err)
		} else {
			result.QRVersion = rotated.QRVersion
			result.Token = token
		}
		results = append(results, result)
	}
	return results, nil
}

// ScanURL membentuk URL yang dikodekan ke dalam gambar QR meja.
func ScanURL(baseURL string, tableID uint, token string) string {
	return fmt.Sprintf("%s/tables/%d/scan?token=%s", baseURL, tableID, token)
}
