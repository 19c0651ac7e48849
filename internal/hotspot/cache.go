// Waypoint - Geofenced Campus Tour Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package hotspot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

const projectKeyPrefix = "project:"

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	// Path is the badger directory. Empty means in-memory.
	Path string
	// TTL is how long a fetched document is served before the source is
	// consulted again.
	TTL time.Duration
}

// cachedDocument is the value stored per project.
type cachedDocument struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Document  json.RawMessage `json:"document"`
}

// Cache is a read-through snapshot cache in front of a Source. Entries
// expire through badger TTLs, and Invalidate forces the next Load to refetch.
type Cache struct {
	db  *badger.DB
	src Source
	ttl time.Duration
	now func() time.Time
}

// OpenCache opens the badger store described by cfg.
func OpenCache(cfg CacheConfig, src Source) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}
	return NewCache(db, src, cfg.TTL), nil
}

// NewCache wraps an already open badger database.
func NewCache(db *badger.DB, src Source, ttl time.Duration) *Cache {
	return &Cache{db: db, src: src, ttl: ttl, now: time.Now}
}

// Load returns the snapshot for projectID, fetching from the source on a
// miss. The returned snapshot is freshly decoded and safe to share.
func (c *Cache) Load(ctx context.Context, projectID string) (*Snapshot, error) {
	doc, hit, err := c.lookup(projectID)
	if err != nil {
		logging.Warn().Err(err).Str("project_id", projectID).Msg("Snapshot cache read failed, fetching from source")
	}

	if hit {
		metrics.SnapshotCacheHits.Inc()
	} else {
		metrics.SnapshotCacheMisses.Inc()
		doc, err = c.fetch(ctx, projectID)
		if err != nil {
			return nil, err
		}
	}

	project, err := DecodeProject(doc.Document)
	if err != nil {
		if hit {
			_ = c.Invalidate(projectID)
		}
		return nil, fmt.Errorf("project %q: %w", projectID, err)
	}
	return NewSnapshot(projectID, project.Hotspots, doc.FetchedAt)
}

func (c *Cache) fetch(ctx context.Context, projectID string) (cachedDocument, error) {
	start := c.now()
	data, err := c.src.Fetch(ctx, projectID)
	metrics.RecordSnapshotFetch(c.src.Name(), c.now().Sub(start), err)
	if err != nil {
		return cachedDocument{}, err
	}

	doc := cachedDocument{FetchedAt: c.now(), Document: data}

	// Reject undecodable documents before they are cached.
	if _, err := DecodeProject(data); err != nil {
		return cachedDocument{}, fmt.Errorf("project %q: %w", projectID, err)
	}
	if err := c.store(projectID, doc); err != nil {
		logging.Warn().Err(err).Str("project_id", projectID).Msg("Failed to cache project document")
	}
	return doc, nil
}

func (c *Cache) lookup(projectID string) (cachedDocument, bool, error) {
	var doc cachedDocument
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(projectKeyPrefix + projectID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cachedDocument{}, false, nil
	}
	if err != nil {
		return cachedDocument{}, false, err
	}
	return doc, true, nil
}

func (c *Cache) store(projectID string, doc cachedDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cached document: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(projectKeyPrefix+projectID), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Invalidate drops the cached document for projectID.
func (c *Cache) Invalidate(projectID string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(projectKeyPrefix + projectID))
	})
	if err != nil {
		return fmt.Errorf("invalidate project %q: %w", projectID, err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
