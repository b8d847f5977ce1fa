package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orrery/internal/control"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/experiment"
	"github.com/san-kum/orrery/internal/geometry"
	"github.com/san-kum/orrery/internal/orrery"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
)

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State dynamo.State
	Time  float64
}

type TickMsg time.Time

// Model steps an orrery and draws its scene every frame. Poses are
// recomputed into one buffer allocated up front.
type Model struct {
	orrery     *orrery.Orrery[float64]
	sys        dynamo.System
	scene      *geometry.Scene
	integrator dynamo.Integrator
	controller dynamo.Controller
	observers  []dynamo.Observer
	integName  string

	ids   geometry.FrameIDVector
	poses geometry.FramePoseVector[float64]

	state, initial dynamo.State
	t, dt          float64
	fps            int
	stepsPerFrame  int

	canvas   *Canvas
	camera   *Camera
	theme    int
	running  bool
	showHelp bool
	err      error

	history      []Snapshot
	playHead     int
	angleHistory []float64
}

// NewModel prepares a live view of exp. Observers see every step taken.
func NewModel(exp *experiment.Experiment, observers ...dynamo.Observer) Model {
	cfg := exp.Config()
	o := exp.Orrery()

	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	spf := int(math.Round(1 / float64(fps) / cfg.Dt))
	if spf < 1 {
		spf = 1
	}

	m := Model{
		orrery:        o,
		sys:           exp.System(),
		scene:         exp.Scene(),
		integrator:    exp.NewIntegrator(),
		controller:    control.For(exp.System()),
		observers:     observers,
		integName:     cfg.Integrator,
		ids:           o.AllocateFrameIDs(),
		poses:         o.AllocateFramePoses(),
		state:         exp.InitState(),
		initial:       exp.InitState(),
		dt:            cfg.Dt,
		fps:           fps,
		stepsPerFrame: spf,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		running:       true,
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		angleHistory:  make([]float64, 0, historyCapacity),
	}
	m.refresh(m.state)
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "left", "h":
			m.camera.RotateYaw(-0.1)
		case "right", "l":
			m.camera.RotateYaw(0.1)
		case "up", "k":
			m.camera.RotatePitch(-0.1)
		case "down", "j":
			m.camera.RotatePitch(0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
		m.refresh(m.shown())
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for i := 0; i < m.stepsPerFrame; i++ {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.refresh(m.shown())
		return m, m.tick()
	}
	return m, nil
}

// step advances the simulation by one integrator step.
func (m *Model) step() {
	u := m.controller.Compute(m.state, m.t)
	for _, obs := range m.observers {
		obs.OnStep(m.state, u, m.t)
	}
	m.state = m.integrator.Step(m.sys, m.state, u, m.t, m.dt)
	m.t += m.dt

	m.history = append(m.history, Snapshot{State: m.state.Clone(), Time: m.t})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.angleHistory = append(m.angleHistory, wrapAngle(m.state[orrery.Earth]))
	if len(m.angleHistory) > historyCapacity {
		m.angleHistory = m.angleHistory[1:]
	}
}

// shown is the state on screen: the live state, or the replayed one.
func (m *Model) shown() dynamo.State {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead].State
	}
	return m.state
}

func (m *Model) shownTime() float64 {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead].Time
	}
	return m.t
}

// refresh recomputes frame poses for x, pushes them into the scene and
// redraws the canvas.
func (m *Model) refresh(x dynamo.State) {
	m.orrery.CalcFramePoses(x, &m.poses)
	if err := m.scene.Apply(m.ids, m.poses); err != nil {
		m.err = err
		return
	}
	m.canvas.Clear()
	DrawScene(m.canvas, m.camera, m.scene.GeometryPoses())
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial state.
func (m *Model) reset() {
	m.t = 0
	m.state = m.initial.Clone()
	m.history = m.history[:0]
	m.angleHistory = m.angleHistory[:0]
	m.playHead = -1
}

func (m Model) View() string {
	st := newStyles(Themes[m.theme])

	var panel strings.Builder
	panel.WriteString(st.header.Render("ORRERY") + "\n")

	status := st.running.Render("RUNNING")
	switch {
	case m.playHead >= 0:
		status = st.paused.Render(fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.history)))
	case !m.running:
		status = st.paused.Render("PAUSED")
	}
	panel.WriteString(row(st, "status", status))
	panel.WriteString(row(st, "time", fmt.Sprintf("%.2f s", m.shownTime())))
	panel.WriteString(row(st, "method", fmt.Sprintf("%s  dt=%g", m.integName, m.dt)))
	panel.WriteString("\n")

	x := m.shown()
	for i, name := range m.orrery.BodyNames() {
		theta := x[i]
		revs := math.Floor(math.Abs(theta-m.initial[i]) / (2 * math.Pi))
		panel.WriteString(row(st, name, fmt.Sprintf("%6.3f rad  %3.0f rev", wrapAngle(theta), revs)))
	}

	if len(m.angleHistory) > 1 {
		chart := asciigraph.Plot(m.angleHistory,
			asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Earth angle"))
		panel.WriteString(st.graph.Render(chart) + "\n")
	}
	if m.err != nil {
		panel.WriteString(st.paused.Render("error: "+m.err.Error()) + "\n")
	}

	help := "space pause · r reset · [ ] replay · ←→↑↓ camera · +/- zoom · t theme · q quit"
	if m.showHelp {
		help = strings.Join([]string{
			"space  pause / resume",
			"r      reset to the initial state",
			"[ ]    step back / forward through history",
			"arrows rotate the camera (or h j k l)",
			"+ -    zoom",
			"t      theme: " + Themes[m.theme].Name,
			"?      toggle this help",
			"q      quit",
		}, "\n")
	}
	panel.WriteString(st.help.Render(help))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		st.canvas.Render(m.canvas.String()),
		st.panel.Render(panel.String()))
}

func row(st styles, label, value string) string {
	return st.label.Render(label) + st.value.Render(value) + "\n"
}

// wrapAngle maps a to [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Run starts the live view of exp and blocks until it exits.
func Run(exp *experiment.Experiment, observers ...dynamo.Observer) error {
	_, err := tea.NewProgram(NewModel(exp, observers...), tea.WithAltScreen()).Run()
	return err
}
