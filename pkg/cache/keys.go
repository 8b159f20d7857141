package cache

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ConfigHash string `json:"config_hash"`
}

// ImageKeyOpts are the inputs that change a rendered image. ShadeHash
// covers the lighting parameters so any shading change invalidates the
// cached pixels.
type ImageKeyOpts struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	ColorMode string  `json:"color_mode"`
	Vibrancy  float64 `json:"vibrancy"`
	Fast      bool    `json:"fast"`
	ShadeHash string  `json:"shade_hash"`
}

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// TreeKey generates a key for a scanned entry list under root.
	TreeKey(root string) string

	// LayoutKey generates a key for a computed layout.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string

	// ImageKey generates a key for a rendered image.
	ImageKey(layoutHash string, opts ImageKeyOpts) string
}

// DefaultKeyer implements Keyer with hashed, prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for a scanned entry list under root.
func (k *DefaultKeyer) TreeKey(root string) string {
	return hashKey("tree", root)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ImageKey generates a key for a rendered image.
func (k *DefaultKeyer) ImageKey(layoutHash string, opts ImageKeyOpts) string {
	return hashKey("image", layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so multiple tenants (server
// sessions, test runs) can share one backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TreeKey generates a prefixed tree key.
func (k *ScopedKeyer) TreeKey(root string) string {
	return k.prefix + k.inner.TreeKey(root)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

// ImageKey generates a prefixed image key.
func (k *ScopedKeyer) ImageKey(layoutHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(layoutHash, opts)
}
