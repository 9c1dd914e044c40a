package db

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// SchemaCache caches DescribeTable results keyed by table name. Any
// write through the executor purges it, since SQLite offers no cheap
// way to tell schema-changing writes apart at this layer.
type SchemaCache struct {
	entries *lru.Cache[string, []Row]
}

// NewSchemaCache creates a cache holding at most size table schemas.
func NewSchemaCache(size int) (*SchemaCache, error) {
	entries, err := lru.New[string, []Row](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema cache: %w", err)
	}
	return &SchemaCache{entries: entries}, nil
}

// Get returns the cached schema rows for table, if present.
func (c *SchemaCache) Get(table string) ([]Row, bool) {
	return c.entries.Get(table)
}

// Put stores schema rows for table.
func (c *SchemaCache) Put(table string, rows []Row) {
	c.entries.Add(table, rows)
}

// Purge drops every cached entry.
func (c *SchemaCache) Purge() {
	if n := c.entries.Len(); n > 0 {
		log.Debug().Int("entries", n).Msg("Purging schema cache")
	}
	c.entries.Purge()
}

// Len returns the number of cached tables.
func (c *SchemaCache) Len() int {
	return c.entries.Len()
}
