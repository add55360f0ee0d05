package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/realtime"
	"github.com/yeremiapane/dinein-app/utils"
)

// Status order. Status order ditentukan oleh aksi staff (authoritative),
// bukan diturunkan dari status item.
const (
	OrderStatusReceived  = "received"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Status item — sub-ledger independen per item untuk partial accept/reject.
const (
	ItemStatusReceived  = "received"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusServed    = "served"
	ItemStatusCancelled = "cancelled"
)

// Status sesi meja
const (
	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)

// orderTransitions memetakan status order ke daftar status tujuan yang legal.
// 'completed' sengaja tidak tercantum sebagai tujuan: satu-satunya jalan ke
// sana adalah CompleteOrderTx lewat rekonsiliasi pembayaran.
var orderTransitions = map[string][]string{
	OrderStatusReceived:  {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusServed},
	OrderStatusServed:    {},
}

var itemTransitions = map[string][]string{
	ItemStatusReceived:  {ItemStatusPreparing, ItemStatusCancelled},
	ItemStatusPreparing: {ItemStatusReady, ItemStatusCancelled},
	ItemStatusReady:     {ItemStatusServed},
	ItemStatusServed:    {},
}

func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService memegang state machine order dan order item.
type OrderService struct {
	db  *gorm.DB
	pub realtime.Publisher
}

func NewOrderService(db *gorm.DB, pub realtime.Publisher) *OrderService {
	return &OrderService{db: db, pub: pub}
}

// OrderItemRequest adalah satu baris pesanan dari tamu.
type OrderItemRequest struct {
	MenuID    uint              `json:"menu_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required,min=1"`
	Notes     string            `json:"notes"`
	Modifiers []ModifierRequest `json:"modifiers"`
}

type ModifierRequest struct {
	Name       string  `json:"name" binding:"required"`
	PriceDelta float64 `json:"price_delta"`
}

// ItemTransition adalah satu entri batch transisi item (accept/reject dsb).
type ItemTransition struct {
	ItemID uint   `json:"item_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// CreateOrder membuat order baru untuk sesi yang masih open. Harga dan
// modifier di-snapshot saat ini juga; perubahan katalog selanjutnya tidak
// mempengaruhi order.
func (s *OrderService) CreateOrder(sessionID uint, items []OrderItemRequest) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.TableSession
		if err := tx.Preload("Table").First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.Status != SessionStatusOpen {
			return ErrSessionNotOpen
		}

		now := time.Now()
		order = models.Order{
			SessionID: session.ID,
			Status:    OrderStatusReceived,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, req := range items {
			var menu models.Menu
			if err := tx.First(&menu, req.MenuID).Error; err != nil {
				return err
			}

			item := models.OrderItem{
				OrderID:   order.ID,
				MenuID:    menu.ID,
				Quantity:  req.Quantity,
				Price:     menu.Price,
				Notes:     req.Notes,
				Status:    ItemStatusReceived,
				CreatedAt: now,
				UpdatedAt: now,
			}
			for _, m := range req.Modifiers {
				item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
					Name:       m.Name,
					PriceDelta: m.PriceDelta,
				})
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			total += item.Subtotal()
		}

		order.TotalAmount = total
		order.Session = session
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("total_amount", total).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := s.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}

	// Event baru disiarkan setelah transaksi commit
	data := realtime.OrderCreatedData{
		OrderID:     created.ID,
		SessionID:   created.SessionID,
		TableID:     created.Session.TableID,
		TableNumber: created.Session.Table.TableNumber,
		TotalAmount: created.TotalAmount,
		Items:       itemChanges(created.OrderItems),
	}
	s.pub.Publish(realtime.RoomWaiter, realtime.NewOrderCreatedEvent(data))
	s.pub.Publish(realtime.RoomAdmin, realtime.NewOrderCreatedEvent(data))

	utils.InfoLogger.Printf("Order #%d created for session %d (total=%.2f)",
		created.ID, created.SessionID, created.TotalAmount)
	return created, nil
}

// BulkTransitionItems menerapkan satu batch transisi item secara atomik.
// Satu entri ilegal menolak seluruh batch, tanpa partial apply. Total order
// dihitung ulang dalam transaksi yang sama sehingga tidak pernah terbaca
// setengah jadi.
func (s *OrderService) BulkTransitionItems(orderID uint, changes []ItemTransition) (*models.Order, error) {
	var anyPreparing bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("OrderItems.Modifiers").First(&order, orderID).Error; err != nil {
			return err
		}

		byID := make(map[uint]*models.OrderItem, len(order.OrderItems))
		for i := range order.OrderItems {
			byID[order.OrderItems[i].ID] = &order.OrderItems[i]
		}

		// Validasi semua entri dulu, baru tulis
		for _, change := range changes {
			item, ok := byID[change.ItemID]
			if !ok {
				return gorm.ErrRecordNotFound
			}
			if !transitionAllowed(itemTransitions, item.Status, change.Status) {
				return fmt.Errorf("item %d: %s -> %s: %w",
					item.ID, item.Status, change.Status, ErrInvalidTransition)
			}
		}

		now := time.Now()
		for _, change := range changes {
			item := byID[change.ItemID]
			item.Status = change.Status
			item.UpdatedAt = now
			if err := tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).
				Updates(map[string]interface{}{"status": change.Status, "updated_at": now}).Error; err != nil {
				return err
			}
			if change.Status == ItemStatusPreparing {
				anyPreparing = true
			}
		}

		total := recomputeTotal(order.OrderItems)
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"total_amount": total, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if anyPreparing {
		s.pub.Publish(realtime.RoomKitchen, realtime.NewItemsUpdateEvent(realtime.ItemsUpdateData{
			OrderID:     updated.ID,
			SessionID:   updated.SessionID,
			TableNumber: updated.Session.Table.TableNumber,
			TotalAmount: updated.TotalAmount,
			Items:       itemChanges(updated.OrderItems),
		}))
	}
	s.publishStatus(updated)

	utils.InfoLogger.Printf("Order #%d: %d item(s) transitioned, total=%.2f",
		updated.ID, len(changes), updated.TotalAmount)
	return updated, nil
}

// AdvanceOrder menjalankan transisi status order oleh staff (termasuk cancel).
// Transisi ilegal mengembalikan ErrInvalidTransition dan state tidak berubah.
func (s *OrderService) AdvanceOrder(orderID uint, target string) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}
		if !transitionAllowed(orderTransitions, order.Status, target) {
			return fmt.Errorf("order %d: %s -> %s: %w",
				order.ID, order.Status, target, ErrInvalidTransition)
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"status": target, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	data := statusData(updated)
	switch target {
	case OrderStatusReady:
		s.pub.Publish(realtime.SessionRoom(updated.SessionID), realtime.NewOrderReadyEvent(data))
		s.pub.Publish(realtime.RoomWaiter, realtime.NewOrderReadyEvent(data))
	case OrderStatusServed:
		s.pub.Publish(realtime.SessionRoom(updated.SessionID), realtime.NewOrderServedEvent(data))
	}
	s.publishStatus(updated)

	utils.InfoLogger.Printf("Order #%d advanced to %s", updated.ID, target)
	return updated, nil
}

// RequestBill menandai permintaan tagihan. Idempotent: panggilan kedua
// adalah no-op tanpa event tambahan.
func (s *OrderService) RequestBill(orderID uint) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == OrderStatusCompleted {
		return nil, fmt.Errorf("order %d already completed: %w", order.ID, ErrInvalidTransition)
	}
	if order.BillRequested {
		return order, nil
	}

	// Guard status ikut masuk ke WHERE: settlement yang menang balapan
	// setelah pembacaan di atas membuat update ini jadi no-op, bukan
	// menandai tagihan pada order yang sudah completed.
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND status <> ?", order.ID, OrderStatusCompleted).
		Updates(map[string]interface{}{"bill_requested": true, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order %d already completed: %w", order.ID, ErrInvalidTransition)
	}
	order.BillRequested = true

	s.pub.Publish(realtime.RoomWaiter, realtime.NewBillRequestedEvent(realtime.BillRequestedData{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		TableNumber: order.Session.Table.TableNumber,
		TotalAmount: order.TotalAmount,
	}))

	utils.InfoLogger.Printf("Bill requested for order #%d", order.ID)
	return order, nil
}

// CompleteOrderTx menutup order dan sesi pemiliknya di dalam transaksi
// milik caller (jalur rekonsiliasi pembayaran). UPDATE yang dijaga kondisi
// status membuat pemanggil kedua yang balapan menjadi no-op, bukan error.
// Mengembalikan true bila pemanggilan inilah yang melakukan transisi.
func (s *OrderService) CompleteOrderTx(tx *gorm.DB, orderID uint) (bool, error) {
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		return false, err
	}

	now := time.Now()
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status <> ?", order.ID, OrderStatusCompleted).
		Updates(map[string]interface{}{"status": OrderStatusCompleted, "updated_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Sudah completed oleh pemanggil lain
		return false, nil
	}

	// Satu-satunya jalur sesi keluar dari 'open'. open_table_id ikut
	// di-NULL-kan supaya meja bisa membuka sesi berikutnya.
	if err := tx.Model(&models.TableSession{}).
		Where("id = ? AND status = ?", order.SessionID, SessionStatusOpen).
		Updates(map[string]interface{}{"status": SessionStatusClosed, "ended_at": now, "updated_at": now, "open_table_id": nil}).Error; err != nil {
		return false, err
	}

	return true, nil
}

// PublishCompleted menyiarkan status completed; dipanggil oleh rekonsiliasi
// setelah transaksinya commit.
func (s *OrderService) PublishCompleted(order *models.Order) {
	s.publishStatus(order)
}

// GetOrder memuat satu order beserta item, modifier, dan meja pemiliknya.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("OrderItems.Modifiers").Preload("OrderItems.Menu").
		Preload("Session.Table").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders mengembalikan order untuk staff, opsional difilter status.
func (s *OrderService) ListOrders(status string) ([]models.Order, error) {
	var orders []models.Order
	q := s.db.Preload("OrderItems.Modifiers").Preload("Session.Table")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListKitchenItems adalah feed polling dapur: item yang sedang dimasak.
func (s *OrderService) ListKitchenItems() ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := s.db.Preload("Menu").Preload("Modifiers").
		Where("status = ?", ItemStatusPreparing).
		Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *OrderService) publishStatus(order *models.Order) {
	data := statusData(order)
	event := realtime.NewOrderStatusEvent(data)
	s.pub.Publish(realtime.SessionRoom(order.SessionID), event)
	s.pub.Publish(realtime.RoomWaiter, event)
	s.pub.Publish(realtime.RoomKitchen, event)
}

func statusData(order *models.Order) realtime.OrderStatusData {
	return realtime.OrderStatusData{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		TableNumber: order.Session.Table.TableNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}
}

func itemChanges(items []models.OrderItem) []realtime.ItemChange {
	changes := make([]realtime.ItemChange, 0, len(items))
	for i := range items {
		changes = append(changes, realtime.ItemChange{
			ItemID:   items[i].ID,
			MenuID:   items[i].MenuID,
			Quantity: items[i].Quantity,
			Status:   items[i].Status,
			Subtotal: items[i].Subtotal(),
		})
	}
	return changes
}

// recomputeTotal menjumlahkan subtotal item yang tidak cancelled.
func recomputeTotal(items []models.OrderItem) float64 {
	var total float64
	for i := range items {
		if items[i].Status == ItemStatusCancelled {
			continue
		}
		total += items[i].Subtotal()
	}
	return total
}
