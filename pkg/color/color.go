// Package color assigns stable display colors to class labels.
package color

import (
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// NeutralColor styles nodes nothing is known about.
	NeutralColor = "#aaaaaa"
	// HighlightBorder marks the last clicked node.
	HighlightBorder = "#d400ff"

	attributeKey = "\x00attribute"

	// maxProbes bounds the search for a free color before a collision is
	// accepted.
	maxProbes = 1 << 16
)

// Assigner maps class labels to colors. The same label always gets the same
// color for the lifetime of the Assigner, and two labels never share a color
// while unused colors remain.
type Assigner struct {
	mu     sync.Mutex
	byKey  map[string]string
	owners map[string]string
}

// NewAssigner returns an empty assigner. The attribute color is reserved up
// front so no class can take it.
func NewAssigner() *Assigner {
	a := &Assigner{
		byKey:  make(map[string]string),
		owners: make(map[string]string),
	}
	a.assign(attributeKey)
	return a
}

// ColorFor returns the color of a class label as "#rrggbb".
func (a *Assigner) ColorFor(label string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assign(label)
}

// AttributeColor returns the shared color of attribute nodes.
func (a *Assigner) AttributeColor() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.byKey[attributeKey]
}

// Assigned returns a copy of the label to color table.
func (a *Assigner) Assigned() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]string, len(a.byKey))
	for k, v := range a.byKey {
		if k == attributeKey {
			continue
		}
		out[k] = v
	}
	return out
}

func (a *Assigner) assign(key string) string {
	if c, ok := a.byKey[key]; ok {
		return c
	}

	c := derive(key, 0)
	for salt := 0; salt < maxProbes; salt++ {
		candidate := derive(key, salt)
		if _, taken := a.owners[candidate]; !taken {
			c = candidate
			a.owners[c] = key
			break
		}
	}

	a.byKey[key] = c
	return c
}

// derive hashes key (with an optional salt) using 32-bit FNV-1a and takes the
// red, green and blue channels from bits 16-23, 8-15 and 0-7. Very dark or
// very light results are pulled back into a readable lightness band.
func derive(key string, salt int) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	if salt > 0 {
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(salt)))
	}
	sum := h.Sum32()

	c := colorful.Color{
		R: float64((sum>>16)&0xff) / 255.0,
		G: float64((sum>>8)&0xff) / 255.0,
		B: float64(sum&0xff) / 255.0,
	}

	hue, chroma, lightness := c.Hcl()
	switch {
	case lightness < 0.35:
		c = colorful.Hcl(hue, chroma, 0.35+lightness/4).Clamped()
	case lightness > 0.9:
		c = colorful.Hcl(hue, chroma, 0.9-(1-lightness)).Clamped()
	}

	return c.Hex()
}
