package services

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/realtime"
	"github.com/yeremiapane/dinein-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// recordingPublisher merekam event yang dipublish untuk diperiksa test.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Room  string
	Event realtime.Event
}

func (p *recordingPublisher) Publish(room string, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Room: room, Event: event})
}

func (p *recordingPublisher) byType(eventType string) []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []recordedEvent
	for _, e := range p.events {
		if e.Event.Event == eventType {
			out = append(out, e)
		}
	}
	return out
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// Seed katalog + meja + sesi open
	db.Create(&models.MenuCategory{Name: "Main"})
	db.Create(&models.Menu{CategoryID: 1, Name: "Nasi Goreng Spesial", Price: 150000, Stock: 100, IsAvailable: true})
	db.Create(&models.Menu{CategoryID: 1, Name: "Es Teh", Price: 20000, Stock: 100, IsAvailable: true})

	secret, _ := NewQRSecret()
	db.Create(&models.Table{TableNumber: "T1", Capacity: 4, IsActive: true, QRSecret: secret, QRVersion: 1})
	tableID := uint(1)
	db.Create(&models.TableSession{TableID: tableID, OpenTableID: &tableID, Status: SessionStatusOpen, OpenedAt: time.Now()})

	return db
}

func newOrderFixture(t *testing.T) (*OrderService, *recordingPublisher, *gorm.DB) {
	db := setupServiceTestDB(t)
	pub := &recordingPublisher{}
	return NewOrderService(db, pub), pub, db
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	svc, pub, db := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{
		{MenuID: 1, Quantity: 1},
		{MenuID: 2, Quantity: 2, Notes: "less sugar"},
	})
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusReceived, order.Status)
	assert.Equal(t, float64(190000), order.TotalAmount)
	assert.Len(t, order.OrderItems, 2)
	for _, item := range order.OrderItems {
		assert.Equal(t, ItemStatusReceived, item.Status)
	}

	// Harga item kebal terhadap perubahan katalog setelahnya
	db.Model(&models.Menu{}).Where("id = ?", 1).Update("price", 999999)
	reloaded, err := svc.GetOrder(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, float64(190000), reloaded.TotalAmount)
	assert.Equal(t, float64(150000), reloaded.OrderItems[0].Price)

	// Event order_created ke waiter dan admin, bukan kitchen
	created := pub.byType(realtime.EventOrderCreated)
	assert.Len(t, created, 2)
	rooms := []string{created[0].Room, created[1].Room}
	assert.Contains(t, rooms, realtime.RoomWaiter)
	assert.Contains(t, rooms, realtime.RoomAdmin)
}

func TestCreateOrderWithModifiers(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{
		{MenuID: 2, Quantity: 2, Modifiers: []ModifierRequest{
			{Name: "Extra shot", PriceDelta: 5000},
		}},
	})
	assert.NoError(t, err)
	// (20000 + 5000) * 2
	assert.Equal(t, float64(50000), order.TotalAmount)
	assert.Len(t, order.OrderItems[0].Modifiers, 1)
}

func TestCreateOrderRequiresOpenSession(t *testing.T) {
	svc, _, db := newOrderFixture(t)

	now := time.Now()
	db.Model(&models.TableSession{}).Where("id = ?", 1).
		Updates(map[string]interface{}{"status": SessionStatusClosed, "ended_at": now})

	_, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrSessionNotOpen)

	_, err = svc.CreateOrder(99, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBulkTransitionPartialRejection(t *testing.T) {
	svc, pub, _ := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{
		{MenuID: 1, Quantity: 1}, // A
		{MenuID: 2, Quantity: 1}, // B
	})
	assert.NoError(t, err)

	itemA := order.OrderItems[0].ID
	itemB := order.OrderItems[1].ID

	updated, err := svc.BulkTransitionItems(order.ID, []ItemTransition{
		{ItemID: itemA, Status: ItemStatusPreparing},
		{ItemID: itemB, Status: ItemStatusCancelled},
	})
	assert.NoError(t, err)

	statuses := map[uint]string{}
	for _, item := range updated.OrderItems {
		statuses[item.ID] = item.Status
	}
	assert.Equal(t, ItemStatusPreparing, statuses[itemA])
	assert.Equal(t, ItemStatusCancelled, statuses[itemB])

	// Total dihitung ulang tanpa item yang ditolak
	assert.Equal(t, float64(150000), updated.TotalAmount)

	// Ada item masuk preparing -> kitchen dapat items_update
	kitchenEvents := pub.byType(realtime.EventItemsUpdate)
	assert.Len(t, kitchenEvents, 1)
	assert.Equal(t, realtime.RoomKitchen, kitchenEvents[0].Room)
}

func TestBulkTransitionRejectsWholeBatch(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{
		{MenuID: 1, Quantity: 1},
		{MenuID: 2, Quantity: 1},
	})
	assert.NoError(t, err)

	itemA := order.OrderItems[0].ID
	itemB := order.OrderItems[1].ID

	// Entri kedua ilegal (received -> served), seluruh batch harus ditolak
	_, err = svc.BulkTransitionItems(order.ID, []ItemTransition{
		{ItemID: itemA, Status: ItemStatusPreparing},
		{ItemID: itemB, Status: ItemStatusServed},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	unchanged, err := svc.GetOrder(order.ID)
	assert.NoError(t, err)
	for _, item := range unchanged.OrderItems {
		assert.Equal(t, ItemStatusReceived, item.Status)
	}
	assert.Equal(t, float64(170000), unchanged.TotalAmount)
}

func TestItemStatusSequences(t *testing.T) {
	// Urutan status item yang sah, persis dan tidak lebih
	legal := [][]string{
		{},
		{ItemStatusPreparing},
		{ItemStatusPreparing, ItemStatusReady},
		{ItemStatusPreparing, ItemStatusReady, ItemStatusServed},
		{ItemStatusCancelled},
		{ItemStatusPreparing, ItemStatusCancelled},
	}
	illegal := [][]string{
		{ItemStatusReady},
		{ItemStatusServed},
		{ItemStatusPreparing, ItemStatusServed},
		{ItemStatusPreparing, ItemStatusReady, ItemStatusCancelled},
		{ItemStatusCancelled, ItemStatusPreparing},
		{ItemStatusPreparing, ItemStatusReady, ItemStatusServed, ItemStatusReady},
	}

	for _, seq := range legal {
		svc, _, _ := newOrderFixture(t)
		order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
		assert.NoError(t, err)
		itemID := order.OrderItems[0].ID

		for _, next := range seq {
			_, err := svc.BulkTransitionItems(order.ID, []ItemTransition{{ItemID: itemID, Status: next}})
			assert.NoError(t, err, "sequence %v should be legal", seq)
		}
	}

	for _, seq := range illegal {
		svc, _, _ := newOrderFixture(t)
		order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
		assert.NoError(t, err)
		itemID := order.OrderItems[0].ID

		var failed bool
		for _, next := range seq {
			if _, err := svc.BulkTransitionItems(order.ID, []ItemTransition{{ItemID: itemID, Status: next}}); err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				failed = true
				break
			}
		}
		assert.True(t, failed, "sequence %v should be rejected", seq)
	}
}

func TestAdvanceOrderTransitions(t *testing.T) {
	svc, pub, _ := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.NoError(t, err)

	for _, target := range []string{OrderStatusPreparing, OrderStatusReady, OrderStatusServed} {
		updated, err := svc.AdvanceOrder(order.ID, target)
		assert.NoError(t, err)
		assert.Equal(t, target, updated.Status)
	}

	// served -> received ilegal
	_, err = svc.AdvanceOrder(order.ID, OrderStatusReceived)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// completed tidak bisa dicapai lewat AdvanceOrder
	_, err = svc.AdvanceOrder(order.ID, OrderStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// ready -> session + waiter; served -> session
	readyEvents := pub.byType(realtime.EventOrderReady)
	assert.Len(t, readyEvents, 2)
	servedEvents := pub.byType(realtime.EventOrderServed)
	assert.Len(t, servedEvents, 1)
	assert.Equal(t, realtime.SessionRoom(order.SessionID), servedEvents[0].Room)
}

func TestAdvanceOrderCancellation(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.NoError(t, err)

	cancelled, err := svc.AdvanceOrder(order.ID, OrderStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, cancelled.Status)

	// cancelled terminal
	_, err = svc.AdvanceOrder(order.ID, OrderStatusPreparing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestBillIdempotent(t *testing.T) {
	svc, pub, _ := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.NoError(t, err)

	first, err := svc.RequestBill(order.ID)
	assert.NoError(t, err)
	assert.True(t, first.BillRequested)

	second, err := svc.RequestBill(order.ID)
	assert.NoError(t, err)
	assert.True(t, second.BillRequested)

	// Panggilan kedua tidak menghasilkan event duplikat
	billEvents := pub.byType(realtime.EventBillRequested)
	assert.Len(t, billEvents, 1)
	assert.Equal(t, realtime.RoomWaiter, billEvents[0].Room)
}

func TestCompleteOrderTxIdempotent(t *testing.T) {
	svc, _, db := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.NoError(t, err)

	completed, err := svc.CompleteOrderTx(db, order.ID)
	assert.NoError(t, err)
	assert.True(t, completed)

	// Pemanggil kedua mengamati no-op, bukan error
	completed, err = svc.CompleteOrderTx(db, order.ID)
	assert.NoError(t, err)
	assert.False(t, completed)

	final, err := svc.GetOrder(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusCompleted, final.Status)
	assert.Equal(t, SessionStatusClosed, final.Session.Status)
	assert.NotNil(t, final.Session.EndedAt)

	// Bill tidak bisa diminta setelah completed
	_, err = svc.RequestBill(order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestBillNotMarkedOnCompletedOrder(t *testing.T) {
	svc, pub, db := newOrderFixture(t)

	order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.NoError(t, err)

	completed, err := svc.CompleteOrderTx(db, order.ID)
	assert.NoError(t, err)
	assert.True(t, completed)

	_, err = svc.RequestBill(order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Flag tagihan tidak boleh menempel pada order yang sudah completed
	var persisted models.Order
	assert.NoError(t, db.First(&persisted, order.ID).Error)
	assert.False(t, persisted.BillRequested)
	assert.Empty(t, pub.byType(realtime.EventBillRequested))
}

func TestPublishFailureNeverBlocksTransition(t *testing.T) {
	db := setupServiceTestDB(t)
	// Publisher no-op: tidak ada subscriber sama sekali
	svc := NewOrderService(db, realtime.NoopPublisher{})

	order, err := svc.CreateOrder(1, []OrderItemRequest{{MenuID: 1, Quantity: 1}})
	assert.NoError(t, err)

	var persisted models.Order
	assert.NoError(t, db.First(&persisted, order.ID).Error)
	assert.Equal(t, OrderStatusReceived, persisted.Status)
}
