package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/database"
	"github.com/arsya371/apologyhub/internal/models"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Apology{},
		&models.BlockedIP{},
		&models.AllowedIP{},
		&models.SecurityLog{},
		&models.User{},
		&models.Setting{},
		&models.ProfanityWord{},
		&models.ActivityLog{},
		&models.DailyStat{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	seedAdmin(db)
	seedSettings(db)
	seedProfanityWords(db)

	fmt.Println("✓ Seeding complete")
}

func seedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Println("- ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin user")
		return
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Println("- Admin user already exists, skipping")
		return
	}

	user := &models.User{Email: email, Name: "Administrator", Role: "admin", Enabled: true}
	if err := user.SetPassword(password); err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}
	if err := db.Create(user).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}
	fmt.Printf("✓ Admin user %s created\n", email)
}

func seedSettings(db *gorm.DB) {
	defaults := map[string]string{
		models.SettingSiteName:          "ApologyHub",
		models.SettingAnnouncement:      "",
		models.SettingShowAnnouncement:  "false",
		models.SettingMaxApologyLength:  "500",
		models.SettingModerationEnabled: "true",
	}

	for key, value := range defaults {
		var existing models.Setting
		if err := db.Where("key = ?", key).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
			log.Fatal("Failed to seed setting:", err)
		}
	}
	fmt.Println("✓ Default settings seeded")
}

func seedProfanityWords(db *gorm.DB) {
	words := []string{"damn", "hell", "crap", "bastard", "idiot"}

	for _, word := range words {
		entry := models.ProfanityWord{Word: word, Language: "en", IsActive: true}
		if err := db.Where("word = ?", word).FirstOrCreate(&entry).Error; err != nil {
			log.Fatal("Failed to seed profanity word:", err)
		}
	}
	fmt.Println("✓ Profanity word list seeded")
}
