package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/experiment"
	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/spatial"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)

	c.Set(0, 0)
	c.Set(7, 7)
	c.Set(-1, 3)
	c.Set(8, 0)

	assert.True(t, c.IsSet(0, 0))
	assert.True(t, c.IsSet(7, 7))
	assert.False(t, c.IsSet(1, 0))
	assert.Equal(t, rune(brailleBlank|0x1), c.Grid[0][0])
	assert.Equal(t, rune(brailleBlank|0x80), c.Grid[1][3])

	c.Clear()
	assert.False(t, c.IsSet(0, 0))
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(c.String(), "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 3, len([]rune(l)))
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(1, 2, 15, 17)
	assert.True(t, c.IsSet(1, 2))
	assert.True(t, c.IsSet(15, 17))
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8)
	assert.True(t, c.IsSet(28, 20))
	assert.True(t, c.IsSet(12, 20))
	assert.False(t, c.IsSet(20, 20))
}

func TestCameraProjectsOriginToCentre(t *testing.T) {
	cam := NewCamera()
	x, y, _, ok := cam.Project(r3.Vec{}, 120, 88)
	require.True(t, ok)
	assert.Equal(t, 60, x)
	assert.Equal(t, 44, y)
}

func TestCameraTopDown(t *testing.T) {
	cam := NewCamera()
	cam.Yaw, cam.Pitch = 0, 0

	x, y, _, ok := cam.Project(r3.Vec{X: 1}, 100, 100)
	require.True(t, ok)
	assert.Greater(t, x, 50)
	assert.Equal(t, 50, y)

	x, y, _, ok = cam.Project(r3.Vec{Y: 1}, 100, 100)
	require.True(t, ok)
	assert.Equal(t, 50, x)
	assert.Less(t, y, 50)

	_, _, _, ok = cam.Project(r3.Vec{Z: cam.Distance}, 100, 100)
	assert.False(t, ok)
}

func TestCameraControls(t *testing.T) {
	cam := NewCamera()
	cam.RotatePitch(10)
	assert.Equal(t, math.Pi/2, cam.Pitch)
	cam.RotatePitch(-10)
	assert.Equal(t, 0.0, cam.Pitch)

	r := cam.ProjectRadius(r3.Vec{}, 1, 100, 100)
	cam.ZoomIn()
	assert.Greater(t, cam.ProjectRadius(r3.Vec{}, 1, 100, 100), r)
	cam.ZoomOut()
	cam.ZoomOut()
	assert.Less(t, cam.ProjectRadius(r3.Vec{}, 1, 100, 100), r)
}

func TestDrawScene(t *testing.T) {
	c := NewCanvas(40, 20)
	cam := NewCamera()
	cam.Yaw, cam.Pitch = 0, 0

	geoms := []geometry.PlacedGeometry{
		{Pose: spatial.Identity(), Shape: geometry.Sphere{Radius: 1}},
		{Pose: spatial.Translation(r3.Vec{X: 3}), Shape: geometry.Cylinder{Radius: 0.1, Length: 2}},
		{
			Pose:  spatial.Identity(),
			Shape: geometry.Mesh{Path: "rings.obj", Scale: 1},
			Mesh:  &geometry.MeshData{Vertices: []r3.Vec{{X: -4}}},
		},
	}
	DrawScene(c, cam, geoms)

	w, h := c.Dots()
	x, y, _, ok := cam.Project(r3.Vec{X: -4}, w, h)
	require.True(t, ok)
	assert.True(t, c.IsSet(x, y), "mesh vertex")

	r := cam.ProjectRadius(r3.Vec{}, 1, w, h)
	assert.True(t, c.IsSet(w/2+int(math.Round(r)), h/2), "sphere outline")

	DrawScene(c, nil, geoms)
}

func TestThemes(t *testing.T) {
	assert.Len(t, ThemeNames(), len(Themes))
	assert.Equal(t, Themes[0].Name, GetTheme("no-such-theme").Name)
	for _, name := range ThemeNames() {
		assert.Equal(t, name, GetTheme(name).Name)
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.GetPreset("realtime")
	cfg.ResourceDirs = []string{"../../resources"}
	exp, err := experiment.New(cfg)
	require.NoError(t, err)
	return NewModel(exp)
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(TickMsg{})
	require.NotNil(t, cmd)
	m = next.(Model)

	assert.InDelta(t, float64(m.stepsPerFrame)*m.dt, m.t, 1e-12)
	assert.Len(t, m.history, m.stepsPerFrame)
	assert.NoError(t, m.err)
	assert.Contains(t, m.View(), "Earth")
}

func TestModelPauseAndReplay(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 3; i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}
	n := len(m.history)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	m = next.(Model)
	assert.False(t, m.running)
	assert.Equal(t, n-2, m.playHead)
	assert.Contains(t, m.View(), "REPLAY")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(Model)
	assert.Equal(t, 0.0, m.t)
	assert.Equal(t, -1, m.playHead)
	assert.Empty(t, m.history)
}

func TestMenuStartsLiveView(t *testing.T) {
	m := NewMenu(nil)
	assert.Equal(t, config.ListPresets(), m.presets)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Menu)
	require.Equal(t, screenConfig, m.screen)

	m.cfg.ResourceDirs = []string{"../../resources"}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Menu)
	require.NoError(t, m.err)
	assert.Equal(t, screenSim, m.screen)
	assert.NotNil(t, cmd)
}

func TestMenuRejectsBadConfig(t *testing.T) {
	m := NewMenu(nil)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Menu)
	m.cfg.Dt = -1

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Menu)
	assert.Error(t, m.err)
	assert.Equal(t, screenConfig, m.screen)
}
