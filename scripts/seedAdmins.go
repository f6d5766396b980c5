package main

import (
	"context"
	"log"

	"coursehub/config"
	"coursehub/database"
	"coursehub/models"
	"coursehub/services/auth"
)

const defaultPassword = "admin@123"

var admins = []models.Admin{
	{Name: "Admin User", Email: "admin.user@gmail.com", Role: models.RoleSuperAdmin, IsActive: true},
	{Name: "Admin Two", Email: "admin.two@gmail.com", Role: models.RoleAdmin, IsActive: true},
}

func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	ctx := context.Background()
	for _, admin := range admins {
		created, err := auth.EnsureAdmin(ctx, database.Database.Db, admin, defaultPassword)
		if err != nil {
			log.Fatalf("Failed to seed admin %s: %v", admin.Email, err)
		}
		if created {
			log.Printf("Created admin %s", admin.Email)
		} else {
			log.Printf("Admin %s already exists, skipping", admin.Email)
		}
	}
	log.Println("Admin seeding completed")
}
