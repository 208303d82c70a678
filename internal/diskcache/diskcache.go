// Package diskcache keeps one JSON document per symbol on disk.
package diskcache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"HoldingsWatch/internal/calendar"
	"HoldingsWatch/internal/model"
)

// Cache reads and writes <Dir>/<SYMBOL>.json.
type Cache struct {
	Dir      string
	Calendar *calendar.Calendar
}

// New creates a Cache rooted at dir.
func New(dir string, cal *calendar.Calendar) *Cache {
	return &Cache{Dir: dir, Calendar: cal}
}

// Path returns the file path for a symbol.
func (c *Cache) Path(symbol string) string {
	return filepath.Join(c.Dir, strings.ToUpper(strings.TrimSpace(symbol))+".json")
}

// Read loads a symbol's record. Missing files, invalid JSON and records
// without the required metadata all report ok=false.
func (c *Cache) Read(symbol string) (*model.CacheRecord, bool) {
	data, err := os.ReadFile(c.Path(symbol))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] read cache %s: %v", symbol, err)
		}
		return nil, false
	}
	var rec model.CacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("[WARN] cache %s is not valid JSON: %v", symbol, err)
		return nil, false
	}
	if rec.LastRefreshed() == "" || rec.TimeSeries == nil {
		return nil, false
	}
	return &rec, true
}

// IsFresh reports whether the record was refreshed on the most recent trading day.
func (c *Cache) IsFresh(rec *model.CacheRecord) bool {
	last := rec.LastRefreshed()
	if last == "" {
		return false
	}
	return last == calendar.Format(c.Calendar.MostRecent())
}

// Write replaces the symbol's file with rec.
func (c *Cache) Write(symbol string, rec *model.CacheRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache record: %w", err)
	}
	return c.WriteRaw(symbol, data)
}

// WriteRaw replaces the symbol's file with data as given.
func (c *Cache) WriteRaw(symbol string, data []byte) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	path := c.Path(symbol)
	tmp, err := os.CreateTemp(c.Dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		log.Printf("[WARN] chmod cache %s: %v", symbol, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache %s: %w", symbol, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache %s: %w", symbol, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache %s: %w", symbol, err)
	}
	return nil
}
