package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/middleware"
	"procurement-tracking-api/routes"
	"procurement-tracking-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database
	config.InitDB()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	router.Use(middleware.CORSMiddleware())

	routes.SetupRoutes(router)

	// The deadline scan is server-owned: notification freshness no longer
	// depends on any client being open.
	scanCtx, cancelScan := context.WithCancel(context.Background())
	defer cancelScan()
	go services.NewDeadlineScanJob(nil).Start(scanCtx, scanInterval())

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s", port)
	log.Printf("📊 Database connected successfully")
	log.Printf("⏰ Deadline scan running every %s", scanInterval())

	if err := router.Run(":" + port); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}

func scanInterval() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("SCAN_INTERVAL_MINUTES"))
	if err != nil || minutes <= 0 {
		return services.DefaultScanInterval
	}
	return time.Duration(minutes) * time.Minute
}
