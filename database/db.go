// database/db.go - PostgreSQL connection lifecycle
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the PostgreSQL connection, tunes the pool and runs migrations.
// Fatal on failure: the server cannot do anything useful without storage.
func InitDB() {
	conn, err := gorm.Open(postgres.Open(resolveDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// All timestamps stored in UTC; handlers convert on the way out.
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatalf("❌ PostgreSQL connection failed: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatalf("❌ Could not access underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db = conn
	log.Println("✅ PostgreSQL connected")

	RunMigrations()
}

// resolveDSN prefers DATABASE_URL and falls back to assembling one from the
// individual DB_* variables.
func resolveDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", ""),
		envOr("DB_NAME", "lifetrack"),
		envOr("DB_SSLMODE", "disable"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetDB returns the shared database handle.
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call InitDB() first.")
	}
	return db
}

// SetDB overrides the database instance. Used by tests to point handlers at
// an in-memory database.
func SetDB(d *gorm.DB) {
	db = d
}

// CloseDB releases the connection pool during shutdown.
func CloseDB() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	log.Println("Database connection closed")
	return nil
}
