package clcolors

import (
	"fmt"
	"strconv"
	"strings"
)

// Color représente une couleur RGB
type Color struct {
	R, G, B int
}

// Theme regroupe les variations d'une couleur de marque pour les emails
type Theme struct {
	Primary   string
	Hover     string
	Accent    string
	Light     string
	Border    string
	Dark      string
	Gradient  string
	TextMuted string
}

var baseColors = map[string]string{
	"blue":   "#007bff",
	"red":    "#dc3545",
	"green":  "#28a745",
	"yellow": "#ffc107",
	"purple": "#667eea",
	"violet": "#764ba2",
	"cyan":   "#17a2b8",
	"orange": "#fd7e14",
	"pink":   "#e83e8c",
	"gray":   "#6c757d",
	"grey":   "#6c757d",
	"black":  "#000000",
}

const fallbackHex = "#667eea"

// ParseColor accepte un nom connu ou un hex #rrggbb, sinon retourne la couleur par défaut
func ParseColor(name string) Color {
	if hex, ok := baseColors[strings.ToLower(strings.TrimSpace(name))]; ok {
		return HexToColor(hex)
	}
	if isHex(name) {
		return HexToColor(name)
	}
	return HexToColor(fallbackHex)
}

// NewTheme génère le thème à partir d'une couleur de marque
func NewTheme(name string) Theme {
	base := ParseColor(name)
	hover := base.Darken(20)

	return Theme{
		Primary:   base.ToHex(),
		Hover:     hover.ToHex(),
		Accent:    base.Lighten(15).ToHex(),
		Light:     base.Lighten(90).ToHex(),
		Border:    base.Lighten(60).ToHex(),
		Dark:      base.Darken(70).ToHex(),
		Gradient:  fmt.Sprintf("linear-gradient(135deg, %s 0%%, %s 100%%)", base.ToHex(), hover.ToHex()),
		TextMuted: "#666666",
	}
}

// ToHex convertit une couleur en hexadécimal
func (c Color) ToHex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Darken assombrit une couleur par un pourcentage
func (c Color) Darken(percent float64) Color {
	factor := 1.0 - percent/100.0
	return Color{
		R: int(float64(c.R) * factor),
		G: int(float64(c.G) * factor),
		B: int(float64(c.B) * factor),
	}
}

// Lighten éclaircit une couleur par un pourcentage
func (c Color) Lighten(percent float64) Color {
	factor := percent / 100.0
	return Color{
		R: c.R + int(float64(255-c.R)*factor),
		G: c.G + int(float64(255-c.G)*factor),
		B: c.B + int(float64(255-c.B)*factor),
	}
}

// HexToColor convertit un hex en Color
func HexToColor(hex string) Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return Color{0, 0, 0}
	}

	r, _ := strconv.ParseInt(hex[0:2], 16, 64)
	g, _ := strconv.ParseInt(hex[2:4], 16, 64)
	b, _ := strconv.ParseInt(hex[4:6], 16, 64)

	return Color{int(r), int(g), int(b)}
}

func isHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}
