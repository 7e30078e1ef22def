package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPlaceModel(t *testing.T) {
	e := NewPlaceEntry(1330757343, 36.7412345678901, 2.98123, "El Achour")
	m := toPlaceModel(e, 4)

	assert.Equal(t, "places", m.TableName())
	assert.Equal(t, 4, m.Seq)
	assert.Equal(t, e, m.toPlaceEntry())
}

func TestPlaceRows(t *testing.T) {
	existing := []PlaceEntry{
		NewPlaceEntry(1, 36.74, 2.98, "El Achour"),
		NewPlaceEntry(2, 36.75, 3.01, "Draria"),
	}
	fresh := []PlaceEntry{
		NewPlaceEntry(3, 36.72, 3.00, "Baba Hassen"),
		NewPlaceEntry(4, 36.70, 2.97, "Douera"),
	}

	tests := []struct {
		name    string
		catalog *Catalog
		added   []PlaceEntry
		want    []int
	}{
		{
			name:    "empty table starts at zero",
			catalog: NewCatalog(fresh),
			added:   fresh,
			want:    []int{0, 1},
		},
		{
			name:    "appended entries continue after existing rows",
			catalog: NewCatalog(append(append([]PlaceEntry{}, existing...), fresh...)),
			added:   fresh,
			want:    []int{2, 3},
		},
		{
			name:    "nothing added",
			catalog: NewCatalog(existing),
			added:   nil,
			want:    []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := placeRows(tt.catalog, tt.added)

			seqs := make([]int, 0, len(rows))
			for i, row := range rows {
				seqs = append(seqs, row.Seq)
				assert.Equal(t, tt.added[i], row.toPlaceEntry())
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

type capturedStatement struct {
	sql  string
	vars []interface{}
}

// newDryRunStore builds SQL without a server, capturing every statement that reaches the driver.
func newDryRunStore(t *testing.T) (*GormStore, *[]capturedStatement) {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=catalog dbname=catalog sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var captured []capturedStatement
	capture := func(tx *gorm.DB) {
		captured = append(captured, capturedStatement{
			sql:  tx.Statement.SQL.String(),
			vars: append([]interface{}{}, tx.Statement.Vars...),
		})
	}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("catalog:capture_create", capture))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("catalog:capture_query", capture))

	return &GormStore{db: db}, &captured
}

func TestGormStoreLoadOrdersBySeq(t *testing.T) {
	store, captured := newDryRunStore(t)

	c, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.Len(t, *captured, 1)
	assert.Contains(t, (*captured)[0].sql, `FROM "places"`)
	assert.Contains(t, (*captured)[0].sql, "ORDER BY seq asc")
}

func TestGormStoreSaveWithoutAddedIsNoop(t *testing.T) {
	store, captured := newDryRunStore(t)
	c := NewCatalog([]PlaceEntry{NewPlaceEntry(1, 36.74, 2.98, "El Achour")})

	tests := []struct {
		name  string
		added []PlaceEntry
	}{
		{name: "nil", added: nil},
		{name: "empty", added: []PlaceEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, store.Save(context.Background(), c, tt.added))
			assert.Empty(t, *captured)
		})
	}
}

func TestInsertPlacesBatches(t *testing.T) {
	tests := []struct {
		name       string
		rows       int
		statements int
	}{
		{name: "single row", rows: 1, statements: 1},
		{name: "exactly one batch", rows: saveBatchSize, statements: 1},
		{name: "spills into a second batch", rows: saveBatchSize + 50, statements: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, captured := newDryRunStore(t)

			entries := make([]PlaceEntry, 0, tt.rows)
			for i := 0; i < tt.rows; i++ {
				entries = append(entries, NewPlaceEntry(int64(i+1), 36.7, 3.0, fmt.Sprintf("Place %d", i+1)))
			}
			rows := placeRows(NewCatalog(entries), entries)

			require.NoError(t, insertPlaces(store.db, rows))
			require.Len(t, *captured, tt.statements)
			for _, stmt := range *captured {
				assert.Contains(t, stmt.sql, `INSERT INTO "places"`)
			}

			first := (*captured)[0]
			batch := tt.rows
			if batch > saveBatchSize {
				batch = saveBatchSize
			}
			// id, seq, lat, lon, name
			require.Len(t, first.vars, 5*batch)
			assert.Equal(t, int64(1), first.vars[0])
			assert.Equal(t, 0, first.vars[1])
			assert.Equal(t, "Place 1", first.vars[4])
		})
	}
}

// TestGormStorePostgres runs against a real database when CATALOG_TEST_POSTGRES_DSN is set.
func TestGormStorePostgres(t *testing.T) {
	dsn := os.Getenv("CATALOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_POSTGRES_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&placeModel{}))
	t.Cleanup(func() {
		_ = db.Migrator().DropTable(&placeModel{})
	})

	store, err := NewGormStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	first := []PlaceEntry{
		NewPlaceEntry(30, 36.74, 2.98, "El Achour"),
		NewPlaceEntry(10, 36.75, 3.01, "Draria"),
	}
	c := NewCatalog(first)
	require.NoError(t, store.Save(ctx, c, first))

	second := []PlaceEntry{NewPlaceEntry(20, 36.72, 3.00, "Baba Hassen")}
	c = NewCatalog(append(c.Entries(), second...))
	require.NoError(t, store.Save(ctx, c, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"El Achour", "Draria", "Baba Hassen"}, loaded.Names())

	maxID, ok := loaded.MaxID()
	require.True(t, ok)
	assert.Equal(t, int64(30), maxID)

	tests := []struct {
		name  string
		entry PlaceEntry
	}{
		{name: "duplicate name", entry: NewPlaceEntry(40, 36.70, 2.97, "Draria")},
		{name: "duplicate id", entry: NewPlaceEntry(30, 36.70, 2.97, "Douera")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dup := NewCatalog(append(loaded.Entries(), tt.entry))
			err := store.Save(ctx, dup, []PlaceEntry{tt.entry})
			require.Error(t, err)
			assert.Equal(t, util.ErrInternalServerError, util.ErrorCode(err))

			after, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, loaded.Entries(), after.Entries())
		})
	}
}
