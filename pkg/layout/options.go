package layout

// Options control spacing and limits of the layered layout.
type Options struct {
	NodeWidth  float64   `toml:"node_width" validate:"gt=0"`
	NodeHeight float64   `toml:"node_height" validate:"gt=0"`
	NodeSep    float64   `toml:"node_sep" validate:"gte=0"`
	RankSep    float64   `toml:"rank_sep" validate:"gte=0"`
	Direction  Direction `toml:"direction" validate:"omitempty,oneof=TB BT LR RL"`
	MaxNodes   int       `toml:"max_nodes" validate:"gte=0"`

	// Sweeps is the number of down/up barycenter passes.
	Sweeps int `toml:"sweeps" validate:"gte=0"`
}

const (
	DefaultNodeWidth  = 200
	DefaultNodeHeight = 80
	DefaultNodeSep    = 100
	DefaultRankSep    = 100
	DefaultMaxNodes   = 2000
	DefaultSweeps     = 4

	// FallbackStepX and FallbackStepY are the offsets between consecutive
	// nodes in fallback placement.
	FallbackStepX = 250
	FallbackStepY = 100
)

// DefaultOptions returns the options used by the editor canvas.
func DefaultOptions() Options {
	return Options{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		NodeSep:    DefaultNodeSep,
		RankSep:    DefaultRankSep,
		Direction:  TopBottom,
		MaxNodes:   DefaultMaxNodes,
		Sweeps:     DefaultSweeps,
	}
}

// withDefaults fills zero values from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = d.MaxNodes
	}
	return o
}

func (o Options) size(b NodeBox) (w, h float64) {
	w, h = b.Width, b.Height
	if w <= 0 {
		w = o.NodeWidth
	}
	if h <= 0 {
		h = o.NodeHeight
	}
	return w, h
}
