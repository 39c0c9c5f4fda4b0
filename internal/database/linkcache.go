package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

// LookupLink returns the cached title and first link of topic if the entry
// is younger than ttl.
func (wdb *WalkDB) LookupLink(ctx context.Context, topic string, ttl time.Duration) (title, next string, ok bool, err error) {
	err = wdb.db.QueryRowContext(ctx, `
	SELECT title, next_topic FROM links
	WHERE topic = ? AND fetched_at > datetime('now', ?)
	`, topic, ageModifier(ttl)).Scan(&title, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("failed to look up link: %w", err)
	}
	return title, next, true, nil
}

// StoreLink records the title and first link of topic, replacing any
// previous entry.
func (wdb *WalkDB) StoreLink(ctx context.Context, topic, title, next string) error {
	_, err := wdb.db.ExecContext(ctx, `
	INSERT INTO links (topic, title, next_topic)
	VALUES (?, ?, ?)
	ON CONFLICT(topic) DO UPDATE SET
		title = excluded.title,
		next_topic = excluded.next_topic,
		fetched_at = CURRENT_TIMESTAMP
	`, topic, title, next)
	if err != nil {
		return fmt.Errorf("failed to store link: %w", err)
	}
	return nil
}

// PurgeLinks deletes cache entries older than ttl and returns how many were
// removed.
func (wdb *WalkDB) PurgeLinks(ctx context.Context, ttl time.Duration) (int64, error) {
	result, err := wdb.db.ExecContext(ctx, `DELETE FROM links WHERE fetched_at <= datetime('now', ?)`, ageModifier(ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to purge links: %w", err)
	}
	return result.RowsAffected()
}

// ageModifier returns the SQLite datetime modifier that goes back ttl from now.
// fetched_at has one second resolution, so ttl is rounded up to whole seconds
// and a sub-second ttl still covers the current second.
func ageModifier(ttl time.Duration) string {
	seconds := int64(math.Ceil(ttl.Seconds()))
	return fmt.Sprintf("-%d seconds", seconds)
}

// LinkCache adapts a WalkDB to the walk engine's link cache.
type LinkCache struct {
	db  *WalkDB
	ttl time.Duration
}

// LinkCache returns a cache whose entries expire after ttl.
func (wdb *WalkDB) LinkCache(ttl time.Duration) *LinkCache {
	return &LinkCache{db: wdb, ttl: ttl}
}

// Lookup returns a fresh entry for topic.
func (c *LinkCache) Lookup(ctx context.Context, topic string) (string, string, bool, error) {
	return c.db.LookupLink(ctx, topic, c.ttl)
}

// Store records the resolution of topic.
func (c *LinkCache) Store(ctx context.Context, topic, title, next string) error {
	return c.db.StoreLink(ctx, topic, title, next)
}
