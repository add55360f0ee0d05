package services

import "errors"

// Error taksonomi inti. Semua dikembalikan sinkron ke caller dan tidak
// pernah di-retry otomatis oleh sistem.
var (
	// ErrInvalidTransition: perubahan status yang tidak legal, state tidak berubah.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrSessionNotOpen: sesi meja sudah ditutup atau belum dibuka.
	ErrSessionNotOpen = errors.New("table session is not open")
	// ErrInvalidToken: signature token QR tidak cocok dengan secret meja saat ini.
	ErrInvalidToken = errors.New("invalid table token")
	// ErrStaleToken: versi di dalam token tidak sama dengan versi meja saat ini.
	ErrStaleToken = errors.New("stale table token, please rescan the QR code")
	// ErrInvalidSignature: signature callback gateway tidak cocok, payload dibuang.
	ErrInvalidSignature = errors.New("invalid callback signature")
	// ErrTableInactive: meja dinonaktifkan oleh admin.
	ErrTableInactive = errors.New("table is not active")
	// ErrOrderNotPayable: order tidak punya tagihan positif yang belum dibayar.
	ErrOrderNotPayable = errors.New("order has no payable amount")
)
