package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/services"
	"github.com/yeremiapane/dinein-app/utils"
)

type TableController struct {
	DB      *gorm.DB
	QR      *services.QRService
	BaseURL string
}

func NewTableController(db *gorm.DB, qr *services.QRService, baseURL string) *TableController {
	return &TableController{DB: db, QR: qr, BaseURL: baseURL}
}

// CreateTable -> menambahkan meja baru dengan secret QR awal
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	secret, err := services.NewQRSecret()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    2,
		IsActive:    true,
		QRSecret:    secret,
		QRVersion:   1,
	}
	if req.Capacity > 0 {
		table.Capacity = req.Capacity
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	token, err := tc.QR.IssueToken(&table)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", gin.H{
		"table":    table,
		"token":    token,
		"scan_url": services.ScanURL(tc.BaseURL, table.ID, token),
	})
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> update kapasitas / aktif / staff yang ditugaskan.
// Secret dan versi QR TIDAK pernah disentuh dari sini.
func (tc *TableController) UpdateTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var req struct {
		Capacity *int  `json:"capacity"`
		IsActive *bool `json:"is_active"`
		StaffID  *uint `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		table.IsActive = *req.IsActive
	}
	if req.StaffID != nil {
		table.StaffID = req.StaffID
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// RegenerateQR -> merotasi secret+versi QR satu meja; seluruh QR lama
// langsung tidak berlaku.
func (tc *TableController) RegenerateQR(c *gin.Context) {
	idStr := c.Param("table_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, token, err := tc.QR.RegenerateQR(uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "QR regenerated", gin.H{
		"table":    table,
		"token":    token,
		"scan_url": services.ScanURL(tc.BaseURL, table.ID, token),
	})
}

// RegenerateAllQR -> rotasi massal, hasil per meja
func (tc *TableController) RegenerateAllQR(c *gin.Context) {
	results, err := tc.QR.RegenerateAll()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "QR regenerated for all tables", results)
}
