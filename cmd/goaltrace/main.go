package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/auth"
	"github.com/goaltrace-dev/goaltrace/internal/dispatcher"
	"github.com/goaltrace-dev/goaltrace/internal/handlers"
	"github.com/goaltrace-dev/goaltrace/internal/router"
	"github.com/goaltrace-dev/goaltrace/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	var err error

	err = godotenv.Load()

	if err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err = auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err = db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		storage, err := services.NewStorage(context.Background(), services.StorageConfig{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          os.Getenv("S3_REGION"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Bucket:          bucket,
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
			UsePathStyle:    os.Getenv("S3_USE_PATH_STYLE") == "true",
		})

		if err != nil {
			log.Fatalf("Failed to configure object storage: %v", err)
		}

		handlers.InitStorage(storage)
	} else {
		log.Println("S3_BUCKET not set, attachment uploads are disabled")
	}

	interval := time.Hour

	if raw := os.Getenv("DISPATCH_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid DISPATCH_INTERVAL: %v", err)
		}
		interval = parsed
	}

	push := services.NewPushClient(os.Getenv("ONESIGNAL_APP_ID"), os.Getenv("ONESIGNAL_API_KEY"))

	dispatcher.Initialize(push, interval)
	defer dispatcher.Shutdown()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err = r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
