package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
)

var csvHeader = []string{"id", "lat", "lon", "name"}

// CSVStore keeps the catalog in a csv file with the columns id,lat,lon,name.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Path() string {
	return s.path
}

func (s *CSVStore) Load(ctx context.Context) (*Catalog, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCatalog(nil), nil
	}
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open catalog %s", s.path)
	}
	defer f.Close()

	entries, err := readEntries(f)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "read catalog %s", s.path)
	}
	return NewCatalog(entries), nil
}

func readEntries(r io.Reader) ([]PlaceEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []PlaceEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header %v, want %v", header, csvHeader)
		}
	}

	entries := make([]PlaceEntry, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q: %w", line, record[0], err)
		}
		lat, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lat %q: %w", line, record[1], err)
		}
		lon, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lon %q: %w", line, record[2], err)
		}
		entries = append(entries, NewPlaceEntry(id, lat, lon, record[3]))
	}
	return entries, nil
}

// Save rewrites the whole file. rows go to <path>.tmp first and are renamed over the
// catalog, readers never see a partially written file.
func (s *CSVStore) Save(ctx context.Context, catalog *Catalog, _ []PlaceEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "create catalog dir")
	}

	tmpPath := s.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "create %s", tmpPath)
	}

	if err := writeEntries(f, catalog.entries); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return util.WrapErrorf(err, util.ErrInternalServerError, "write %s", tmpPath)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return util.WrapErrorf(err, util.ErrInternalServerError, "sync %s", tmpPath)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return util.WrapErrorf(err, util.ErrInternalServerError, "close %s", tmpPath)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return util.WrapErrorf(err, util.ErrInternalServerError, "replace catalog %s", s.path)
	}
	return nil
}

func writeEntries(w io.Writer, entries []PlaceEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatFloat(e.Lat, 'f', -1, 64),
			strconv.FormatFloat(e.Lon, 'f', -1, 64),
			e.Name,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
