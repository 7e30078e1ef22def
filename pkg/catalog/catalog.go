package catalog

// PlaceEntry is a graph node with the place name it was resolved to.
type PlaceEntry struct {
	ID   int64   `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func NewPlaceEntry(id int64, lat, lon float64, name string) PlaceEntry {
	return PlaceEntry{ID: id, Lat: lat, Lon: lon, Name: name}
}

// Catalog is the ordered, append-only set of named places. ids and names are unique,
// the first entry with a given id or name wins.
type Catalog struct {
	entries []PlaceEntry
	byName  map[string]int
	byID    map[int64]int
	maxID   int64
}

func NewCatalog(entries []PlaceEntry) *Catalog {
	c := &Catalog{
		entries: make([]PlaceEntry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byID:    make(map[int64]int, len(entries)),
	}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

// add appends e unless its id or name is already present.
func (c *Catalog) add(e PlaceEntry) bool {
	if _, ok := c.byID[e.ID]; ok {
		return false
	}
	if _, ok := c.byName[e.Name]; ok {
		return false
	}
	if len(c.entries) == 0 || e.ID > c.maxID {
		c.maxID = e.ID
	}
	c.byID[e.ID] = len(c.entries)
	c.byName[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
	return true
}

func (c *Catalog) clone() *Catalog {
	return NewCatalog(c.entries)
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) IsEmpty() bool {
	return len(c.entries) == 0
}

// MaxID is the watermark: the highest node id in the catalog. ok is false for an empty catalog.
func (c *Catalog) MaxID() (int64, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	return c.maxID, true
}

// LookupByName returns the node id of an admitted place name.
func (c *Catalog) LookupByName(name string) (int64, bool) {
	pos, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return c.entries[pos].ID, true
}

func (c *Catalog) HasName(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Catalog) GetEntry(name string) (PlaceEntry, bool) {
	pos, ok := c.byName[name]
	if !ok {
		return PlaceEntry{}, false
	}
	return c.entries[pos], true
}

// Names in insertion order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	return names
}

// Entries returns a copy of the entries in insertion order.
func (c *Catalog) Entries() []PlaceEntry {
	entries := make([]PlaceEntry, len(c.entries))
	copy(entries, c.entries)
	return entries
}
