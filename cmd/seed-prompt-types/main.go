package main

import (
	"log"

	"prompt-tracker/internal/config"
	"prompt-tracker/internal/database"
)

// 通知类别目录（不可变引用数据，一次性灌种）
var promptTypes = []struct {
	Name        string
	Description string
	Category    string
}{
	// Category 1 - Daily Activities
	{"Meal", "Notification for meal times and food service", "daily"},
	{"Yard", "Notification for yard time and outdoor activities", "daily"},
	{"Day Room", "Notification for day room activities and access", "daily"},
	{"Canteen", "Notification for canteen access and services", "daily"},

	// Category 2 - Programs
	{"Work", "Notification for work assignments and schedules", "programs"},
	{"School", "Notification for educational programs and classes", "programs"},
	{"Programming", "Notification for various programming activities and sessions", "programs"},

	// Category 3 - Appointments
	{"Visiting", "Notification for visiting hours and appointments", "appointments"},
	{"Attorney Visit", "Notification for legal visits and attorney meetings", "appointments"},
	{"Medical Appointments", "Notification for medical appointments and healthcare services", "appointments"},
	{"Other", "Notification for other miscellaneous appointments", "appointments"},
}

func main() {
	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Seeding prompt types...")

	for _, pt := range promptTypes {
		_, err := db.Exec(
			`INSERT INTO prompt_types (name, description, category)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name, category) DO NOTHING`,
			pt.Name, pt.Description, pt.Category,
		)
		if err != nil {
			log.Fatalf("Failed to seed prompt type %q: %v", pt.Name, err)
		}
	}

	log.Println("Prompt types seeding completed")
}
