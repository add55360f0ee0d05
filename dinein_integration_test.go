package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/config"
	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/realtime"
	"github.com/yeremiapane/dinein-app/router"
	"github.com/yeremiapane/dinein-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndDineIn menguji flow utama dine-in:
// 0. Register + login admin -> token staff
// 1. Buat meja -> token QR + scan -> sesi open
// 2. Tamu membuat order
// 3. Waiter menerima item, dapur memasak, order ready -> served
// 4. Tamu minta tagihan
// 5. Staff settle tunai -> order completed, sesi tertutup
func TestEndToEndDineIn(t *testing.T) {
	db := setupIntegrationDB()
	hub := realtime.NewHub(utils.ErrorLogger)
	cfg := &config.Config{ServerAddr: ":8080", AppBaseURL: "http://localhost:8080"}
	r := router.SetupRouter(db, hub, cfg)

	staffToken := registerAndLogin(t, r)

	tableID, qrToken := createTableTest(t, r, staffToken)
	sessionID := scanTableTest(t, r, tableID, qrToken)
	orderID := createOrderTest(t, r, sessionID)

	acceptItemsTest(t, r, staffToken, orderID)
	cookAndServeTest(t, r, staffToken, orderID)
	requestBillTest(t, r, orderID)
	settleCashTest(t, r, staffToken, orderID)

	// Order selesai dan sesi meja tertutup
	var order models.Order
	assert.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, "completed", order.Status)

	var session models.TableSession
	assert.NoError(t, db.First(&session, sessionID).Error)
	assert.Equal(t, "closed", session.Status)
	assert.NotNil(t, session.EndedAt)

	// Sesi tertutup: endpoint sesi aktif tidak menemukan apa pun
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tables/%d/session", tableID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// setupIntegrationDB -> migrasi model di SQLite in-memory + seed menu
func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
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
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Create(&models.MenuCategory{Name: "Makanan"})
	db.Create(&models.Menu{CategoryID: 1, Name: "Nasi Goreng Spesial", Price: 150000, Stock: 50, IsAvailable: true})
	db.Create(&models.Menu{CategoryID: 1, Name: "Es Teh", Price: 20000, Stock: 100, IsAvailable: true})

	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]interface{})
	assert.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func registerAndLogin(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, http.MethodPost, "/register", "", map[string]string{
		"name":     "Test Admin",
		"email":    "admin@example.com",
		"password": "secret123!",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123!",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	token, ok := data["token"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
	return token
}

func createTableTest(t *testing.T, r *gin.Engine, staffToken string) (uint, string) {
	w := doJSON(t, r, http.MethodPost, "/admin/tables", staffToken, map[string]interface{}{
		"table_number": "A1",
		"capacity":     4,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	table := data["table"].(map[string]interface{})
	qrToken := data["token"].(string)
	assert.NotEmpty(t, qrToken)
	assert.NotEmpty(t, data["scan_url"])
	return uint(table["id"].(float64)), qrToken
}

func scanTableTest(t *testing.T, r *gin.Engine, tableID uint, qrToken string) uint {
	url := fmt.Sprintf("/tables/%d/scan?token=%s", tableID, qrToken)
	w := doJSON(t, r, http.MethodGet, url, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "open", data["status"])
	return uint(data["id"].(float64))
}

func createOrderTest(t *testing.T, r *gin.Engine, sessionID uint) uint {
	url := fmt.Sprintf("/sessions/%d/orders", sessionID)
	w := doJSON(t, r, http.MethodPost, url, "", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_id": 1, "quantity": 1, "notes": "tidak pedas"},
			{"menu_id": 2, "quantity": 2},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "received", data["status"])
	assert.Equal(t, float64(190000), data["total_amount"])
	return uint(data["id"].(float64))
}

func acceptItemsTest(t *testing.T, r *gin.Engine, staffToken string, orderID uint) {
	url := fmt.Sprintf("/admin/orders/%d/items", orderID)
	w := doJSON(t, r, http.MethodPatch, url, staffToken, map[string]interface{}{
		"items": []map[string]interface{}{
			{"item_id": 1, "status": "preparing"},
			{"item_id": 2, "status": "preparing"},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func cookAndServeTest(t *testing.T, r *gin.Engine, staffToken string, orderID uint) {
	url := fmt.Sprintf("/admin/orders/%d/status", orderID)
	for _, status := range []string{"preparing", "ready", "served"} {
		w := doJSON(t, r, http.MethodPost, url, staffToken, map[string]string{"status": status})
		assert.Equal(t, http.StatusOK, w.Code, "advance to %s", status)
	}

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "served", data["status"])
}

func requestBillTest(t *testing.T, r *gin.Engine, orderID uint) {
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/orders/%d/bill", orderID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["bill_requested"])
}

func settleCashTest(t *testing.T, r *gin.Engine, staffToken string, orderID uint) {
	url := fmt.Sprintf("/admin/orders/%d/settle", orderID)
	w := doJSON(t, r, http.MethodPost, url, staffToken, map[string]float64{"amount": 190000})
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "completed", data["status"])

	// Cek status pembayaran lewat jalur polling tamu
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d/payment-status", orderID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	status := decodeData(t, w)
	assert.Equal(t, "paid", status["payment_status"])
	assert.Equal(t, "completed", status["order_status"])
}
