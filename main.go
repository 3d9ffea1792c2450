package main

import (
	"log"
	"os"
	"time"

	"parkwithease/database"
	"parkwithease/models"
	"parkwithease/routes"
	"parkwithease/services"
	"parkwithease/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 檢查 AES_KEY 是否加載成功
	if err := utils.InitCrypto(); err != nil {
		log.Fatalf("Failed to initialize crypto: %v", err)
	}
	log.Println("Crypto initialized successfully")

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 執行資料庫遷移
	database.DB.AutoMigrate(
		&models.User{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
	)
	log.Println("Database migration completed")

	// 確保預設管理員存在
	ensureAdminExists()

	// 設置 Gin 模式
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api)
	}

	// 啟動定時任務
	c := cron.New()

	// 車位狀態校正定時任務（每 5 分鐘執行一次）
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("Syncing parking spot statuses...")
		if err := services.SyncSpotStatus(); err != nil {
			log.Printf("Failed to sync parking spot statuses: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule spot status sync cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	// 啟動伺服器
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// ensureAdminExists 檢查並創建預設管理員
// 管理員與一般使用者走同一條登入路徑，只差在 role 欄位
func ensureAdminExists() {
	var admin models.User
	if err := database.DB.Where("role = ?", "admin").First(&admin).Error; err == nil {
		log.Printf("Admin already exists: username=%s", admin.Username)
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Fatalf("ADMIN_USERNAME and ADMIN_PASSWORD must be set to seed the default admin")
	}

	admin = models.User{
		Username:      username,
		Password:      password,
		DOB:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		VehicleNumber: "ADMIN",
		Role:          "admin",
	}
	if err := services.RegisterUser(&admin); err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Printf("Default admin created: username=%s", admin.Username)
}
