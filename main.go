package main

import (
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeremiapane/dinein-app/config"
	"github.com/yeremiapane/dinein-app/models"
	"github.com/yeremiapane/dinein-app/realtime"
	"github.com/yeremiapane/dinein-app/router"
	"github.com/yeremiapane/dinein-app/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
	cfg := config.Load()

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Payment{},
	); err != nil {
		utils.ErrorLogger.Fatalf("failed to migrate: %v", err)
	}

	go utils.CleanupBlacklist()

	hub := realtime.NewHub(utils.ErrorLogger)
	r := router.SetupRouter(db, hub, cfg)

	utils.InfoLogger.Printf("Server listening on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		utils.ErrorLogger.Fatalf("server stopped: %v", err)
	}
}
