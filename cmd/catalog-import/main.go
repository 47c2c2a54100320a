// Imports an achievement catalog from a JSON file into the database.
// Existing entries with the same ID are updated; awards already earned
// against them are untouched.
//
// Usage: catalog-import [path/to/catalog.json]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"lifetrack/database"
	"lifetrack/models"
	"lifetrack/services"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	jsonPath := "./data/achievements.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatal("Failed to read catalog file:", err)
	}

	var catalog []models.Achievement
	if err := json.Unmarshal(data, &catalog); err != nil {
		log.Fatal("Failed to parse catalog JSON:", err)
	}

	// Reject the whole file on any bad entry so a partial import never
	// leaves the catalog referencing unknown conditions.
	if err := services.ValidateCatalog(catalog); err != nil {
		log.Fatal("Invalid catalog:", err)
	}

	database.InitDB()
	db := database.GetDB()

	fmt.Printf("Importing %d achievements from %s\n\n", len(catalog), jsonPath)

	imported := 0
	for _, achievement := range catalog {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&achievement)
		if result.Error != nil {
			log.Printf("❌ %s: %v", achievement.ID, result.Error)
			continue
		}
		fmt.Printf("  %s (%s, %d pts)\n", achievement.ID, achievement.Category, achievement.Points)
		imported++
	}

	fmt.Printf("\n✅ Imported %d/%d achievements\n", imported, len(catalog))
}
