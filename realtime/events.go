package realtime

// Nama room. Room sesi dibentuk lewat SessionRoom.
const (
	RoomWaiter  = "waiter"
	RoomKitchen = "kitchen"
	RoomAdmin   = "admin"
)

// Event types — satu per jenis perubahan lifecycle yang disiarkan.
const (
	EventOrderCreated  = "order_created"
	EventItemsUpdate   = "items_update"
	EventOrderReady    = "order_ready"
	EventOrderServed   = "order_served"
	EventBillRequested = "bill_requested"
	EventOrderStatus   = "order_status"
)

// Event adalah amplop yang dikirim ke subscriber: tag + payload bertipe.
// Transport hanya perlu tahu room + hasil marshal, bukan bentuk payload.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ItemChange merangkum satu item yang ikut berubah dalam sebuah event.
type ItemChange struct {
	ItemID   uint    `json:"item_id"`
	MenuID   uint    `json:"menu_id"`
	Quantity int     `json:"quantity"`
	Status   string  `json:"status"`
	Subtotal float64 `json:"subtotal"`
}

type OrderCreatedData struct {
	OrderID     uint         `json:"order_id"`
	SessionID   uint         `json:"session_id"`
	TableID     uint         `json:"table_id"`
	TableNumber string       `json:"table_number"`
	TotalAmount float64      `json:"total_amount"`
	Items       []ItemChange `json:"items"`
}

type ItemsUpdateData struct {
	OrderID     uint         `json:"order_id"`
	SessionID   uint         `json:"session_id"`
	TableNumber string       `json:"table_number"`
	TotalAmount float64      `json:"total_amount"`
	Items       []ItemChange `json:"items"`
}

type OrderStatusData struct {
	OrderID     uint    `json:"order_id"`
	SessionID   uint    `json:"session_id"`
	TableNumber string  `json:"table_number"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
}

type BillRequestedData struct {
	OrderID     uint    `json:"order_id"`
	SessionID   uint    `json:"session_id"`
	TableNumber string  `json:"table_number"`
	TotalAmount float64 `json:"total_amount"`
}

func NewOrderCreatedEvent(data OrderCreatedData) Event {
	return Event{Event: EventOrderCreated, Data: data}
}

func NewItemsUpdateEvent(data ItemsUpdateData) Event {
	return Event{Event: EventItemsUpdate, Data: data}
}

func NewOrderReadyEvent(data OrderStatusData) Event {
	return Event{Event: EventOrderReady, Data: data}
}

func NewOrderServedEvent(data OrderStatusData) Event {
	return Event{Event: EventOrderServed, Data: data}
}

func NewBillRequestedEvent(data BillRequestedData) Event {
	return Event{Event: EventBillRequested, Data: data}
}

func NewOrderStatusEvent(data OrderStatusData) Event {
	return Event{Event: EventOrderStatus, Data: data}
}
