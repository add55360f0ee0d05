package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/utils"
)

// Status pembayaran
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Metode pembayaran
const (
	PaymentMethodCash    = "cash"
	PaymentMethodGateway = "gateway"
)

// PaymentService merekonsiliasi settlement — baik entri kas oleh staff
// maupun callback asinkron dari provider — lalu meneruskannya ke
// OrderService untuk menutup order dan sesi.
type PaymentService struct {
	db      *gorm.DB
	orders  *OrderService
	gateway *GatewayService
}

func NewPaymentService(db *gorm.DB, orders *OrderService, gateway *GatewayService) *PaymentService {
	return &PaymentService{db: db, orders: orders, gateway: gateway}
}

// InitiatePayment memulai pembayaran lewat provider eksternal untuk order
// dengan tagihan positif yang belum dibayar. Panggilan HTTP ke provider
// terjadi di luar transaksi database.
func (ps *PaymentService) InitiatePayment(orderID uint) (*models.Payment, *ChargeResponse, error) {
	order, err := ps.orders.GetOrder(orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.Status == OrderStatusCompleted || order.Status == OrderStatusCancelled || order.TotalAmount <= 0 {
		return nil, nil, ErrOrderNotPayable
	}

	gatewayOrderID := GatewayOrderID(order.ID)
	payment, err := ps.upsertPending(order, PaymentMethodGateway, gatewayOrderID)
	if err != nil {
		return nil, nil, err
	}
	if payment.Status == PaymentStatusPaid {
		return nil, nil, ErrOrderNotPayable
	}

	resp, err := ps.gateway.Charge(gatewayOrderID, order.TotalAmount, EncodePassthrough(order.ID))
	if err != nil {
		return nil, nil, err
	}

	return payment, resp, nil
}

// upsertPending membuat atau memakai ulang satu-satunya baris Payment
// milik order; percobaan ulang tidak pernah membuat duplikat.
func (ps *PaymentService) upsertPending(order *models.Order, method, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("order_id = ?", order.ID).First(&payment).Error
		if err == gorm.ErrRecordNotFound {
			now := time.Now()
			payment = models.Payment{
				OrderID:        order.ID,
				Method:         method,
				Status:         PaymentStatusPending,
				Amount:         order.TotalAmount,
				ReferenceID:    uuid.NewString(),
				GatewayOrderID: gatewayOrderID,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			return tx.Create(&payment).Error
		}
		if err != nil {
			return err
		}
		if payment.Status == PaymentStatusPaid {
			return nil
		}
		payment.Method = method
		payment.Amount = order.TotalAmount
		payment.GatewayOrderID = gatewayOrderID
		payment.UpdatedAt = time.Now()
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// HandleCallback memverifikasi dan menerapkan IPN provider. Aman terhadap
// replay: callback identik kedua berakhir sebagai no-op tanpa efek samping
// tambahan.
func (ps *PaymentService) HandleCallback(cb CallbackRequest) error {
	if !ps.gateway.VerifyCallbackSignature(cb) {
		utils.ErrorLogger.Printf("Callback signature mismatch for gateway order %s — dropping payload", cb.OrderID)
		return ErrInvalidSignature
	}

	orderID, err := DecodePassthrough(cb.Passthrough)
	if err != nil {
		// Fallback: ambil ID internal dari prefix gateway order id
		orderID, err = internalOrderID(cb.OrderID)
		if err != nil {
			return fmt.Errorf("cannot resolve internal order id from callback: %w", err)
		}
	}

	if !cb.IsSuccess() {
		utils.InfoLogger.Printf("Callback for order %d reported result %s, nothing applied", orderID, cb.ResultCode)
		return nil
	}

	finalAmount, err := strconv.ParseFloat(cb.Amount, 64)
	if err != nil {
		return fmt.Errorf("invalid callback amount %q: %v", cb.Amount, err)
	}

	var completed bool
	err = ps.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status <> ?", payment.ID, PaymentStatusPaid).
			Updates(map[string]interface{}{
				"status":       PaymentStatusPaid,
				"final_amount": finalAmount,
				"paid_at":      now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}

		var err error
		completed, err = ps.orders.CompleteOrderTx(tx, orderID)
		return err
	})
	if err != nil {
		return err
	}

	if completed {
		order, err := ps.orders.GetOrder(orderID)
		if err == nil {
			ps.orders.PublishCompleted(order)
		}
		utils.InfoLogger.Printf("Order #%d settled via gateway callback (amount=%.2f)", orderID, finalAmount)
	}
	return nil
}

// SettleCash mencatat settlement tunai/kartu oleh staff — jalur sinkron
// langsung ke penyelesaian order. Balapan dengan callback gateway berakhir
// dengan satu pemenang dan satu no-op.
func (ps *PaymentService) SettleCash(orderID uint, amount float64, staffID uint) (*models.Order, error) {
	order, err := ps.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == OrderStatusCancelled {
		return nil, ErrOrderNotPayable
	}

	var completed bool
	err = ps.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("order_id = ?", orderID).First(&payment).Error
		now := time.Now()
		if err == gorm.ErrRecordNotFound {
			payment = models.Payment{
				OrderID:     orderID,
				Method:      PaymentMethodCash,
				Status:      PaymentStatusPending,
				Amount:      order.TotalAmount,
				ReferenceID: uuid.NewString(),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status <> ?", payment.ID, PaymentStatusPaid).
			Updates(map[string]interface{}{
				"method":       PaymentMethodCash,
				"status":       PaymentStatusPaid,
				"final_amount": amount,
				"verified_by":  staffID,
				"paid_at":      now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}

		completed, err = ps.orders.CompleteOrderTx(tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	settled, err := ps.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if completed {
		ps.orders.PublishCompleted(settled)
		utils.InfoLogger.Printf("Order #%d settled in cash by staff %d", orderID, staffID)
	}
	return settled, nil
}

// StatusResult dipakai polling tamu selama menunggu konfirmasi settlement.
type StatusResult struct {
	OrderID       uint   `json:"order_id"`
	OrderStatus   string `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
}

// CheckStatus adalah pembacaan murni atas status order + pembayaran.
func (ps *PaymentService) CheckStatus(orderID uint) (*StatusResult, error) {
	var order models.Order
	if err := ps.db.First(&order, orderID).Error; err != nil {
		return nil, err
	}

	result := &StatusResult{OrderID: order.ID, OrderStatus: order.Status}

	var payment models.Payment
	err := ps.db.Where("order_id = ?", orderID).First(&payment).Error
	if err == nil {
		result.PaymentStatus = payment.Status
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return result, nil
}

// internalOrderID memulihkan ID order internal dari gateway order id
// berformat {id}_{timestamp}.
func internalOrderID(gatewayOrderID string) (uint, error) {
	idPart, _, found := strings.Cut(gatewayOrderID, "_")
	if !found {
		return 0, fmt.Errorf("unexpected gateway order id %q", gatewayOrderID)
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
