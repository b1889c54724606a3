package render

import (
	"context"
	"fmt"
	"strings"
)

// Renderer converts notation text into an image.
type Renderer interface {
	// Render returns the encoded image for text. Invalid documents yield
	// a *SyntaxError. Empty text yields nil bytes and no error.
	Render(ctx context.Context, text string) ([]byte, error)
}

// Format is an output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" and "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG:
		return f, nil
	case "":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want svg or png)", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// SyntaxError is reported for documents the renderer cannot read. Message
// is meant to be displayed verbatim in place of the preview.
type SyntaxError struct {
	Message string
	Line    int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Parse error on line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Config controls the appearance of rendered output.
type Config struct {
	Format Format `toml:"format" validate:"omitempty,oneof=svg png"`

	// RankDir overrides the direction written in the document header.
	RankDir  string `toml:"rank_dir" validate:"omitempty,oneof=TB TD BT LR RL"`
	FontSize int    `toml:"font_size" validate:"gte=0,lte=72"`
	Theme    string `toml:"theme" validate:"omitempty,oneof=default dark forest neutral"`
}

// DefaultFontSize is used when Config.FontSize is zero.
const DefaultFontSize = 14

func (c Config) withDefaults() Config {
	if c.Format == "" {
		c.Format = FormatSVG
	}
	if c.FontSize <= 0 {
		c.FontSize = DefaultFontSize
	}
	if c.Theme == "" {
		c.Theme = "default"
	}
	return c
}
