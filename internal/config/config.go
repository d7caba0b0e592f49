// Package config validates construction-time settings for the B-tree
// engine: order, file paths, and buffer capacities.
package config

import "fmt"

// Config holds the settings fixed at BTree construction. Per spec.md
// §5, offset math is derived from Order and never changes afterward.
type Config struct {
	Order               int    // d; every non-root page holds d..2d records
	IndexPath           string // path to the binary index file
	DataPath            string // path to the binary data file
	IndexBufferCapacity int    // LRU capacity for index pages
	DataBufferCapacity  int    // LRU capacity for data pages
}

// Default returns the spec's default configuration: order 2, buffers
// of capacity 3, files under ./data.
func Default() Config {
	return Config{
		Order:               2,
		IndexPath:           "data/index.txt",
		DataPath:            "data/data.txt",
		IndexBufferCapacity: 3,
		DataBufferCapacity:  3,
	}
}

// Validate rejects nonsensical configuration before any file is touched.
func (c Config) Validate() error {
	if c.Order < 1 {
		return fmt.Errorf("config: order must be positive, got %d", c.Order)
	}
	if c.IndexBufferCapacity < 1 {
		return fmt.Errorf("config: index buffer capacity must be positive, got %d", c.IndexBufferCapacity)
	}
	if c.DataBufferCapacity < 1 {
		return fmt.Errorf("config: data buffer capacity must be positive, got %d", c.DataBufferCapacity)
	}
	if c.IndexPath == "" || c.DataPath == "" {
		return fmt.Errorf("config: index and data paths must be set")
	}
	return nil
}
