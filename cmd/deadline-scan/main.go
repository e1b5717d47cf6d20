// Command deadline-scan triggers one deadline scan pass and exits. Useful
// for manual runs and cron-style scheduling outside the API server.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"procurement-tracking-api/config"
	"procurement-tracking-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	summary, err := services.NewDeadlineScanJob(nil).Run(ctx)
	if errors.Is(err, services.ErrDeadlineScanAlreadyRunning) {
		log.Println("deadline scan skipped: another scan is in flight")
		return
	}
	if err != nil {
		log.Fatalf("deadline scan failed: %v", err)
	}

	log.Printf("deadline scan complete: %d steps scanned, %d notifications emitted, %d deduplicated, %d errors",
		summary.StepsScanned, summary.Emitted, summary.Deduplicated, summary.Errors)
}
