package sky

import (
	"fmt"
	"sort"
)

// LookupError is returned by Interpolate when an hour has neither a bracketing
// pair of configured hours nor a colour of its own.
type LookupError struct {
	Hour int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no colour for hour %d: not configured and not between two configured hours", e.Hour)
}

// Palette maps configured hours of the day to colours. It is immutable once
// built.
type Palette struct {
	hours   []int // ascending
	colours map[int]Colour
}

// NewPalette builds a Palette from the configured hour colours.
func NewPalette(colours map[int]Colour) *Palette {
	p := &Palette{
		hours:   make([]int, 0, len(colours)),
		colours: make(map[int]Colour, len(colours)),
	}
	for h, c := range colours {
		p.hours = append(p.hours, h)
		p.colours[h] = c
	}
	sort.Ints(p.hours)
	return p
}

// Hours returns the configured hours in ascending order.
func (p *Palette) Hours() []int {
	out := make([]int, len(p.hours))
	copy(out, p.hours)
	return out
}

// Len reports the number of configured hours.
func (p *Palette) Len() int {
	return len(p.hours)
}

// Interpolate returns the sky colour for hour.
//
// The first adjacent pair of configured hours (h0, h1) with h0 <= hour <= h1
// is blended with t = (hour-h0)/(h1-h0). Without such a pair the configured
// colour for hour is returned as is, or a *LookupError when there is none.
func (p *Palette) Interpolate(hour int) (Colour, error) {
	for i := 0; i+1 < len(p.hours); i++ {
		h0, h1 := p.hours[i], p.hours[i+1]
		if h0 <= hour && hour <= h1 {
			t := float64(hour-h0) / float64(h1-h0)
			return Lerp(p.colours[h0], p.colours[h1], t), nil
		}
	}
	if c, ok := p.colours[hour]; ok {
		return c, nil
	}
	return Colour{}, &LookupError{Hour: hour}
}
