// Package storeio implements the persistence layer on top of gorm. It
// serves the HTTP API; the offline batch build has its own faster path in
// buildio.
package storeio

import (
	"fmt"
	"log/slog"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/oceandata/hydromon/internal/ent/store"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/oceandata/hydromon/pkg/ent/model"
)

type storeio struct {
	db *gorm.DB
}

// New connects to PostgreSQL and returns a Store.
func New(cfg config.Config) (store.Store, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.PgHost, cfg.PgPort, cfg.PgUser, cfg.PgPass, cfg.PgDB)
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		slog.Error("Cannot connect to database", "error", err)
		return nil, err
	}
	return &storeio{db: db}, nil
}

// NewWithDB wraps an existing gorm handle. Tests use it with an in-memory
// SQLite database.
func NewWithDB(db *gorm.DB) store.Store {
	return &storeio{db: db}
}

func (s *storeio) UserByID(id uint) (*model.User, error) {
	var u model.User
	res := s.db.First(&u, id)
	if res.RecordNotFound() {
		return nil, store.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &u, nil
}

func (s *storeio) UserByUsername(username string) (*model.User, error) {
	var u model.User
	res := s.db.Where("username = ?", username).First(&u)
	if res.RecordNotFound() {
		return nil, store.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &u, nil
}

func (s *storeio) Users() ([]model.User, error) {
	var us []model.User
	if err := s.db.Order("id").Find(&us).Error; err != nil {
		return nil, err
	}
	return us, nil
}

func (s *storeio) CreateUser(u *model.User) error {
	return s.db.Create(u).Error
}

func (s *storeio) UpdateUser(u *model.User) error {
	return s.db.Save(u).Error
}

func (s *storeio) DeleteUser(u *model.User) error {
	return s.db.Delete(u).Error
}

func (s *storeio) AdminCount() (int, error) {
	var count int
	err := s.db.Model(&model.User{}).
		Where("role = ?", "admin").
		Count(&count).Error
	return count, err
}

func (s *storeio) HydroData(f store.HydroFilter) ([]model.HydroData, error) {
	q := s.db.Model(&model.HydroData{})
	if f.ID != nil {
		q = q.Where("id = ?", *f.ID)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.Basin != "" {
		q = q.Where("basin = ?", f.Basin)
	}
	if f.SectionName != "" {
		q = q.Where("section_name = ?", f.SectionName)
	}
	if f.Date != nil {
		q = q.Where("date = ?", *f.Date)
	}

	var hd []model.HydroData
	if err := q.Order("id").Find(&hd).Error; err != nil {
		return nil, err
	}
	return hd, nil
}

func (s *storeio) InsertHydroData(batch []model.HydroData) error {
	return s.insertBatch(len(batch), func(tx *gorm.DB, i int) error {
		return tx.Create(&batch[i]).Error
	})
}

func (s *storeio) Fish() ([]model.Fish, error) {
	var fs []model.Fish
	if err := s.db.Order("id").Find(&fs).Error; err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *storeio) InsertFish(batch []model.Fish) error {
	return s.insertBatch(len(batch), func(tx *gorm.DB, i int) error {
		return tx.Create(&batch[i]).Error
	})
}

// insertBatch runs n inserts inside one transaction; any failure rolls the
// whole chunk back.
func (s *storeio) insertBatch(
	n int,
	create func(tx *gorm.DB, i int) error,
) error {
	if n == 0 {
		return nil
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for i := 0; i < n; i++ {
		if err := create(tx, i); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (s *storeio) Close() error {
	return s.db.Close()
}
