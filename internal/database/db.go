package database

import (
	"log"

	"clinicpanel/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Patient{},
		&model.Provider{},
		&model.Category{},
		&model.CashSession{},
		&model.LedgerEntry{},
		&model.OrthoMaintenance{},
		&model.Appointment{},
		&model.Budget{},
		&model.PlanItem{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	// At most one open till system-wide. The partial unique index backs the
	// locked check performed inside the opening transaction, so two concurrent
	// opens cannot both commit.
	err = db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_cash_session_open
		 ON cash_sessions ((closed_at IS NULL)) WHERE closed_at IS NULL`,
	).Error
	if err != nil {
		log.Println("WARNING: Failed to create open-session index:", err)
	}

	return db, nil
}

// SeedDefaults inserts the default category set the panel expects. Existing
// rows are left untouched.
func SeedDefaults(db *gorm.DB) {
	defaults := []model.Category{
		{Name: "Consultas", Kind: model.CategoryIncome},
		{Name: "Procedimentos", Kind: model.CategoryIncome},
		{Name: "Ortodontia", Kind: model.CategoryIncome},
		{Name: "Materiais/Estoque", Kind: model.CategoryExpense},
		{Name: "Aluguel", Kind: model.CategoryExpense},
		{Name: "Internet/Luz/Água", Kind: model.CategoryExpense},
		{Name: "Outros", Kind: model.CategoryBoth},
	}
	for _, c := range defaults {
		cat := c
		cat.Active = true
		if err := db.Where("name = ?", cat.Name).FirstOrCreate(&cat).Error; err != nil {
			log.Println("WARNING: Failed to seed category", cat.Name, ":", err)
		}
	}
}
