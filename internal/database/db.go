package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"project-tracker/internal/models"
)

// Open connects to postgres, retrying while the database container comes
// up, and migrates the schema.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxAttempts))

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info("connected to database")
			break
		}

		log.Warn("database connection failed", zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", maxAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.ReferenceItem{},
		&models.Project{},
		&models.Task{},
		&models.HistoryEntry{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// AdminSeed is the account created on an empty users table.
type AdminSeed struct {
	SAP      int64
	Name     string
	Username string
	Password string
}

// Seed creates the default admin when no admin exists yet and fills the
// reference tables that are still empty.
func Seed(db *gorm.DB, admin AdminSeed, log *zap.Logger) error {
	if err := createDefaultAdmin(db, admin, log); err != nil {
		return err
	}
	return seedReference(db, log)
}

func createDefaultAdmin(db *gorm.DB, seed AdminSeed, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}
	if seed.Username == "" || seed.Password == "" {
		return errors.New("admin username and password are required to seed an empty database")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		SAP:          seed.SAP,
		Name:         seed.Name,
		Username:     seed.Username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if admin.SAP == 0 {
		admin.SAP = 1
	}
	if admin.Name == "" {
		admin.Name = "Administrator"
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	log.Info("created default admin user", zap.String("username", admin.Username), zap.Int64("sap", admin.SAP))
	return nil
}

// defaults for the lookup tables of a fresh install
var referenceDefaults = map[models.ReferenceKind][]models.ReferenceItem{
	models.KindProjectType: {{Label: "New Development"}, {Label: "Enhancement"}, {Label: "Maintenance"}},
	models.KindPlatform:    {{Label: "Web"}, {Label: "Mobile"}, {Label: "SAP"}},
	models.KindTaskGroup:   {{Label: "Analysis"}, {Label: "Development"}, {Label: "Testing"}, {Label: "Deployment"}},
	models.KindPosition: {
		{Label: "Backend", Role: models.RoleEngineer},
		{Label: "Frontend", Role: models.RoleEngineer},
		{Label: "Fullstack", Role: models.RoleEngineer},
		{Label: "Mobile", Role: models.RoleEngineer},
	},
}

func seedReference(db *gorm.DB, log *zap.Logger) error {
	for _, kind := range models.ReferenceKinds {
		items := referenceDefaults[kind]
		if kind == models.KindRole {
			for _, r := range models.Roles {
				items = append(items, models.ReferenceItem{Label: string(r)})
			}
		}

		var count int64
		if err := db.Model(&models.ReferenceItem{}).Where("kind = ?", kind).Count(&count).Error; err != nil {
			return fmt.Errorf("check %s: %w", kind, err)
		}
		if count > 0 || len(items) == 0 {
			continue
		}

		for i := range items {
			items[i].Kind = kind
		}
		if err := db.Create(&items).Error; err != nil {
			return fmt.Errorf("seed %s: %w", kind, err)
		}
		log.Info("seeded reference data", zap.String("kind", string(kind)), zap.Int("items", len(items)))
	}
	return nil
}
