package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/orrery"
	"github.com/san-kum/orrery/internal/spatial"
	"github.com/san-kum/orrery/internal/viz"
)

var ErrNoBodyGeometry = errors.New("export: body has no sphere attached to its frame")

// Braille dot-to-bit mapping
var pixelMap = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, theme.Primary)

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := canvas.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Track is the world path of one body's centre.
type Track struct {
	Body   string
	Points []r3.Vec
}

// BodyTracks replays states through the orrery and records where each
// body's sphere sits in the world. The scene's frame poses are left at the
// last state.
func BodyTracks(o *orrery.Orrery[float64], scene *geometry.Scene, states [][]float64) ([]Track, error) {
	bodies := o.Bodies()
	tracks := make([]Track, len(bodies))
	spheres := make([]spatial.Transform[float64], len(bodies))
	for i, b := range bodies {
		tracks[i] = Track{Body: b.Name, Points: make([]r3.Vec, 0, len(states))}
	}

	ids := o.AllocateFrameIDs()
	poses := o.AllocateFramePoses()
	for _, x := range states {
		o.CalcFramePoses(x, &poses)
		if err := scene.Apply(ids, poses); err != nil {
			return nil, err
		}

		found := make([]bool, len(bodies))
		for _, g := range scene.GeometryPoses() {
			if _, ok := g.Shape.(geometry.Sphere); !ok {
				continue
			}
			for i, b := range bodies {
				if g.Frame == b.Frame && !found[i] {
					spheres[i], found[i] = g.Pose, true
				}
			}
		}
		for i := range bodies {
			if !found[i] {
				return nil, fmt.Errorf("%w: %s", ErrNoBodyGeometry, bodies[i].Name)
			}
			tracks[i].Points = append(tracks[i].Points, spatial.ToR3(spheres[i].P))
		}
	}
	return tracks, nil
}

// TracksToSVG draws the tracks seen from above, one path per body, on a
// shared scale with the sun at the origin.
func TracksToSVG(tracks []Track, width, height int, theme viz.Theme) string {
	extent := 1.0
	for _, tr := range tracks {
		for _, p := range tr.Points {
			extent = max(extent, math.Abs(p.X), math.Abs(p.Y))
		}
	}
	extent *= 1.1

	side := float64(min(width, height))
	toX := func(x float64) float64 { return float64(width)/2 + x/extent*side/2 }
	toY := func(y float64) float64 { return float64(height)/2 - y/extent*side/2 }

	colors := []string{string(theme.Primary), string(theme.Accent), string(theme.Warning), string(theme.Text)}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, width, height, width, height, toX(0), toY(0), side/2/extent, theme.Muted)

	for i, tr := range tracks {
		if len(tr.Points) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, strings.ToLower(tr.Body), colors[i%len(colors)])
		for j, p := range tr.Points {
			if j > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", toX(p.X), toY(p.Y))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
