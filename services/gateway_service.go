package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yeremiapane/dinein-app/utils"
)

// GatewayConfig menyimpan konfigurasi provider pembayaran. Resep field
// signature adalah DATA konfigurasi, bukan kode: menambah provider lain
// cukup mengganti daftar field, bukan menambah jalur kode baru.
type GatewayConfig struct {
	ServerKey   string
	BaseURL     string
	MerchantID  string
	CallbackURL string
	// Urutan field (alfabetis, sesuai dokumentasi provider) yang nilainya
	// digabung lalu di-HMAC untuk signature request keluar.
	RequestSignFields []string
	// Resep untuk callback masuk; berbeda dari resep request.
	CallbackSignFields []string
}

// LoadGatewayConfig membaca konfigurasi gateway dari environment.
func LoadGatewayConfig() *GatewayConfig {
	serverKey := os.Getenv("GATEWAY_SERVER_KEY")
	if serverKey == "" {
		utils.ErrorLogger.Println("GATEWAY_SERVER_KEY is empty, using sandbox key")
		serverKey = "SB-server-key-dev"
	}

	baseURL := os.Getenv("GATEWAY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.sandbox.pay.example.com"
	}

	merchantID := os.Getenv("GATEWAY_MERCHANT_ID")
	if merchantID == "" {
		merchantID = "M-000000"
	}

	callbackURL := os.Getenv("GATEWAY_CALLBACK_URL")
	if callbackURL == "" {
		callbackURL = "http://localhost:8080/payments/callback"
	}

	return &GatewayConfig{
		ServerKey:          serverKey,
		BaseURL:            baseURL,
		MerchantID:         merchantID,
		CallbackURL:        callbackURL,
		RequestSignFields:  []string{"amount", "merchant_id", "order_id"},
		CallbackSignFields: []string{"amount", "order_id", "result_code"},
	}
}

// GatewayService memanggil API provider untuk inisiasi pembayaran.
type GatewayService struct {
	config     *GatewayConfig
	httpClient *http.Client
}

func NewGatewayService(config *GatewayConfig) *GatewayService {
	return &GatewayService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (gs *GatewayService) Config() *GatewayConfig {
	return gs.config
}

// Sign menggabungkan nilai field sesuai resep lalu menghitung
// HMAC-SHA256 dengan server key.
func (gs *GatewayService) Sign(fields map[string]string, recipe []string) string {
	var sb strings.Builder
	for _, name := range recipe {
		sb.WriteString(fields[name])
	}
	mac := hmac.New(sha256.New, []byte(gs.config.ServerKey))
	mac.Write([]byte(sb.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// GatewayOrderID mensintesis ID order yang unik global sepanjang waktu
// seperti yang disyaratkan provider: {internalOrderId}_{timestamp}.
func GatewayOrderID(orderID uint) string {
	return fmt.Sprintf("%d_%d", orderID, time.Now().Unix())
}

// EncodePassthrough membungkus ID order internal ke blob base64 yang
// di-echo kembali apa adanya oleh callback provider.
func EncodePassthrough(orderID uint) string {
	data, _ := json.Marshal(map[string]uint{"order_id": orderID})
	return base64.StdEncoding.EncodeToString(data)
}

// DecodePassthrough membongkar blob passthrough menjadi ID order internal.
func DecodePassthrough(blob string) (uint, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return 0, err
	}
	var payload struct {
		OrderID uint `json:"order_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, err
	}
	if payload.OrderID == 0 {
		return 0, fmt.Errorf("passthrough has no order_id")
	}
	return payload.OrderID, nil
}

// ChargeResponse adalah balasan provider atas inisiasi pembayaran.
type ChargeResponse struct {
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
	PaymentURL    string `json:"payment_url"`
	QRString      string `json:"qr_string"`
	ExpiryTime    string `json:"expiry_time"`
	Message       string `json:"message"`
}

// Charge mengirim permintaan pembayaran ke provider. Dipanggil di luar
// transaksi database mana pun.
func (gs *GatewayService) Charge(gatewayOrderID string, amount float64, passthrough string) (*ChargeResponse, error) {
	fields := map[string]string{
		"amount":      fmt.Sprintf("%.2f", amount),
		"merchant_id": gs.config.MerchantID,
		"order_id":    gatewayOrderID,
	}

	payload := map[string]interface{}{
		"order_id":     gatewayOrderID,
		"amount":       fields["amount"],
		"merchant_id":  gs.config.MerchantID,
		"callback_url": gs.config.CallbackURL,
		"passthrough":  passthrough,
		"signature":    gs.Sign(fields, gs.config.RequestSignFields),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	url := fmt.Sprintf("%s/v1/charge", gs.config.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := gs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway API error: %s", string(body))
	}

	var chargeResp ChargeResponse
	if err := json.Unmarshal(body, &chargeResp); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	utils.InfoLogger.Printf("Gateway charge created for %s", gatewayOrderID)
	return &chargeResp, nil
}

// CallbackRequest adalah payload IPN yang dikirim provider ke webhook.
type CallbackRequest struct {
	OrderID     string `json:"order_id"` // gateway order id ({id}_{ts})
	Amount      string `json:"amount"`
	ResultCode  string `json:"result_code"`
	Passthrough string `json:"passthrough"`
	Signature   string `json:"signature"`
}

// VerifyCallbackSignature menghitung ulang HMAC callback dan
// membandingkannya dengan signature yang dikirim provider. Ini satu-satunya
// autentikasi untuk endpoint webhook.
func (gs *GatewayService) VerifyCallbackSignature(cb CallbackRequest) bool {
	fields := map[string]string{
		"amount":      cb.Amount,
		"order_id":    cb.OrderID,
		"result_code": cb.ResultCode,
	}
	expected := gs.Sign(fields, gs.config.CallbackSignFields)
	return hmac.Equal([]byte(expected), []byte(cb.Signature))
}

// IsSuccess menerjemahkan result code provider.
func (cb CallbackRequest) IsSuccess() bool {
	return cb.ResultCode == "00"
}
