package config

import (
	"log"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedSampleProducts(); err != nil {
		log.Printf("⚠️ Product seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin user.
// This is for development/testing only; in production create the
// admin through a secure process and change the password immediately.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:        "Administrador",
		Username:    "admin",
		Password:    hashedPassword,
		Role:        string(domain.RoleAdmin),
		Permissions: models.PermissionList(domain.FullPermissions().Strings()),
		IsActive:    true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedSampleProducts seeds a starter catalog so a fresh dev install
// has something to loan out
func (s *Seeder) seedSampleProducts() error {
	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	if count > 0 {
		return nil // Catalog already populated
	}

	products := []models.Product{
		{Name: "Blue Widgets", SKU: "BW-001", Category: "Widgets", Quantity: 15, Location: "Warehouse A, Shelf 3", ReorderPoint: 10},
		{Name: "Red Gadgets", SKU: "RG-002", Category: "Gadgets", Quantity: 8, Location: "Warehouse B, Bin 12", ReorderPoint: 15},
		{Name: "Green Gizmos", SKU: "GG-003", Category: "Gizmos", Quantity: 50, Location: "Warehouse A, Shelf 1", ReorderPoint: 20},
		{Name: "Yellow Sprockets", SKU: "YS-004", Category: "Sprockets", Quantity: 120, Location: "Warehouse C, Aisle 5", ReorderPoint: 100},
		{Name: "Purple Doohickeys", SKU: "PD-005", Category: "Doohickeys", Quantity: 3, Location: "Retail Floor, Display 2", ReorderPoint: 5},
		{Name: "Orange Thingamajigs", SKU: "OT-006", Category: "Thingamajigs", Quantity: 75, Location: "Warehouse B, Shelf 8", ReorderPoint: 50},
		{Name: "Black Whatchamacallits", SKU: "BW-007", Category: "Whatchamacallits", Quantity: 22, Location: "Warehouse A, Bin 4", ReorderPoint: 20},
	}

	for i := range products {
		products[i].ID = uuid.NewString()
		if err := s.db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Sample catalog created: %d products", len(products))
	return nil
}
