package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins prefix and the digest of the JSON encoding of parts,
// e.g. "render:3f2a...".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// RenderKeyOpts are the render settings that change the produced artifact.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Theme    string `json:"theme"`
	RankDir  string `json:"rankdir"`
	FontSize int    `json:"font_size"`
}

// LayoutKeyOpts are the layout settings that change computed positions.
type LayoutKeyOpts struct {
	NodeWidth  float64 `json:"node_width"`
	NodeHeight float64 `json:"node_height"`
	NodeSep    float64 `json:"node_sep"`
	RankSep    float64 `json:"rank_sep"`
	Direction  string  `json:"direction"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey identifies the artifact rendered from notation text.
	RenderKey(text string, opts RenderKeyOpts) string

	// LayoutKey identifies a layout of a graph, given its content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes the inputs together with the options, so changing
// any option yields a different key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(text string, opts RenderKeyOpts) string {
	return hashKey("render", Hash([]byte(text)), opts)
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating instances that share
// one backend (e.g. several deployments on the same Redis).
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RenderKey implements [Keyer].
func (k *ScopedKeyer) RenderKey(text string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(text, opts)
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}
