package modelio

import (
	"github.com/jinzhu/gorm"

	"github.com/oceandata/hydromon/pkg/ent/model"
)

type modelio struct {
	db *gorm.DB
}

// New returns a new instance of Model
func New(db *gorm.DB) model.Model {
	res := modelio{db: db}
	return &res
}

// Migrate creates tables in the database.
func (m *modelio) Migrate() error {
	m.db.AutoMigrate(
		&model.User{},
		&model.Site{},
		&model.HydroData{},
		&model.Fish{},
	)
	if m.db.Error != nil {
		return m.db.Error
	}

	return nil
}
