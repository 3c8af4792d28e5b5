// Package cache stores computed annotation batches and rendered artifacts so
// repeated runs over an unchanged scene skip the geometry work.
//
// # Backends
//
//   - [FileCache]: hashed JSON files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for `redline serve`
//   - [NullCache]: stores nothing, used with --no-cache
//
// # Keys
//
// Keys are built by a [Keyer] from a content hash and the options that
// influence the output:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ResultKey(cache.Hash(sceneJSON), cache.ResultKeyOpts{Orientation: "top"})
//
// Use [NewScopedKeyer] to give tenants separate namespaces on a shared
// backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Default lifetimes.
const (
	ResultTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 30 * 24 * time.Hour
)

// ResultKeyOpts lists everything besides the scene that changes a batch
// result.
type ResultKeyOpts struct {
	Requests             []string `json:"requests,omitempty"`
	Orientation          string   `json:"orientation,omitempty"`
	TextClearance        float64  `json:"text_clearance,omitempty"`
	MeasurementClearance float64  `json:"measurement_clearance,omitempty"`
	Margin               float64  `json:"margin,omitempty"`
	FontSize             float64  `json:"font_size,omitempty"`
	PaddingX             float64  `json:"padding_x,omitempty"`
	PaddingY             float64  `json:"padding_y,omitempty"`
}

// ArtifactKeyOpts lists the rendering choices for an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	ShowRegions bool    `json:"show_regions,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey keys an annotation batch by scene hash and options.
	ResultKey(sceneHash string, opts ResultKeyOpts) string

	// ArtifactKey keys a rendered output by result hash and format.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(sceneHash string, opts ResultKeyOpts) string {
	return hashKey("result", sceneHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
