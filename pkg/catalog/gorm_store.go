package catalog

import (
	"context"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const saveBatchSize = 100

// placeModel is a row of the places table. Seq keeps the catalog insertion order.
type placeModel struct {
	ID   int64   `gorm:"primaryKey;autoIncrement:false"`
	Seq  int     `gorm:"index;not null"`
	Lat  float64 `gorm:"not null"`
	Lon  float64 `gorm:"not null"`
	Name string  `gorm:"uniqueIndex;not null"`
}

func (placeModel) TableName() string {
	return "places"
}

func toPlaceModel(e PlaceEntry, seq int) placeModel {
	return placeModel{ID: e.ID, Seq: seq, Lat: e.Lat, Lon: e.Lon, Name: e.Name}
}

func (m placeModel) toPlaceEntry() PlaceEntry {
	return NewPlaceEntry(m.ID, m.Lat, m.Lon, m.Name)
}

// GormStore keeps the catalog in a postgres table. the table is append-only,
// Save inserts the new entries in one transaction.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the places table.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "connect catalog database")
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&placeModel{}); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "migrate places table")
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context) (*Catalog, error) {
	var rows []placeModel
	if err := s.db.WithContext(ctx).Order("seq asc").Find(&rows).Error; err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "load places")
	}

	entries := make([]PlaceEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toPlaceEntry())
	}
	return NewCatalog(entries), nil
}

func (s *GormStore) Save(ctx context.Context, catalog *Catalog, added []PlaceEntry) error {
	if len(added) == 0 {
		return nil
	}

	rows := placeRows(catalog, added)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertPlaces(tx, rows)
	})
	if err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "insert %d places", len(rows))
	}
	return nil
}

// placeRows maps the entries appended at the end of catalog to rows, continuing its insertion order.
func placeRows(catalog *Catalog, added []PlaceEntry) []placeModel {
	first := catalog.Len() - len(added)
	rows := make([]placeModel, 0, len(added))
	for i, e := range added {
		rows = append(rows, toPlaceModel(e, first+i))
	}
	return rows
}

func insertPlaces(tx *gorm.DB, rows []placeModel) error {
	return tx.CreateInBatches(rows, saveBatchSize).Error
}
