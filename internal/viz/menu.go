package viz

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/experiment"
)

var presetInfo = map[string]string{
	"realtime": "rk4 at 60 steps per second",
	"precise":  "adaptive rk45, tight tolerance",
	"long":     "ten minutes of euler",
	"aligned":  "every body starts at zero",
}

const (
	screenMenu = iota
	screenConfig
	screenSim
)

var menuFields = []string{"integrator", "dt", "duration", "fps"}

// Menu picks a preset, lets the user adjust it and then runs the live view.
type Menu struct {
	screen   int
	cursor   int
	presets  []string
	cfg      *config.Config
	field    int
	editing  bool
	editBuf  string
	err      error
	theme    int
	registry *experiment.Registry
	logger   *slog.Logger
	live     Model
	opts     []dynamo.Observer
}

// NewMenu returns the preset picker. Observers are passed to the live view.
func NewMenu(logger *slog.Logger, observers ...dynamo.Observer) Menu {
	return Menu{
		screen:   screenMenu,
		presets:  config.ListPresets(),
		registry: experiment.NewRegistry(),
		logger:   logger,
		opts:     observers,
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == screenSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.screen == screenConfig {
		return m.configKey(key)
	}
	return m.menuKey(key)
}

func (m Menu) menuKey(msg tea.KeyMsg) (Menu, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.screen, m.field, m.err = screenConfig, 0, nil
	}
	return m, nil
}

func (m Menu) configKey(msg tea.KeyMsg) (Menu, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			m.err = m.setField(menuFields[m.field], m.editBuf)
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += s
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.screen = screenMenu
	case "up", "k":
		if m.field > 0 {
			m.field--
		}
	case "down", "j":
		if m.field < len(menuFields)-1 {
			m.field++
		}
	case "left", "h":
		m.cycleIntegrator(-1)
	case "right", "l":
		m.cycleIntegrator(1)
	case "enter", " ":
		if menuFields[m.field] != "integrator" {
			m.editing, m.editBuf = true, m.fieldValue(menuFields[m.field])
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *Menu) cycleIntegrator(dir int) {
	if menuFields[m.field] != "integrator" {
		return
	}
	names := m.registry.ListIntegrators()
	i := slices.Index(names, m.cfg.Integrator)
	i = (i + dir + len(names)) % len(names)
	m.cfg.Integrator = names[i]
}

func (m *Menu) fieldValue(name string) string {
	switch name {
	case "integrator":
		return m.cfg.Integrator
	case "dt":
		return strconv.FormatFloat(m.cfg.Dt, 'g', -1, 64)
	case "duration":
		return strconv.FormatFloat(m.cfg.Duration, 'g', -1, 64)
	case "fps":
		return strconv.Itoa(m.cfg.FPS)
	}
	return ""
}

func (m *Menu) setField(name, value string) error {
	if name == "fps" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("fps: %w", err)
		}
		m.cfg.FPS = n
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	switch name {
	case "dt":
		m.cfg.Dt = v
	case "duration":
		m.cfg.Duration = v
	}
	return nil
}

// start builds the experiment and switches to the live view.
func (m Menu) start() (Menu, tea.Cmd) {
	exp, err := experiment.New(m.cfg, experiment.WithLogger(m.logger), experiment.WithRegistry(m.registry))
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live = NewModel(exp, m.opts...)
	m.live.theme = m.theme
	m.screen = screenSim
	return m, m.live.Init()
}

func (m Menu) View() string {
	if m.screen == screenSim {
		return m.live.View()
	}
	st := newStyles(Themes[m.theme])

	var b strings.Builder
	b.WriteString(st.header.Render("ORRERY") + "\n\n")

	if m.screen == screenMenu {
		for i, name := range m.presets {
			line := fmt.Sprintf("%-10s %s", name, presetInfo[name])
			if i == m.cursor {
				b.WriteString(st.cursor.Render("> "+line) + "\n")
			} else {
				b.WriteString(st.label.Render("  "+line) + "\n")
			}
		}
		b.WriteString("\n" + st.help.Render("↑↓ select · enter configure · t theme · q quit"))
		return st.panel.Render(b.String())
	}

	b.WriteString(st.label.Render("preset ") + st.value.Render(m.presets[m.cursor]) + "\n\n")
	for i, name := range menuFields {
		value := m.fieldValue(name)
		if m.editing && i == m.field {
			value = m.editBuf + "_"
		}
		line := fmt.Sprintf("%-10s %s", name, value)
		if i == m.field {
			b.WriteString(st.cursor.Render("> "+line) + "\n")
		} else {
			b.WriteString(st.label.Render("  "+line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n" + st.paused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + st.help.Render("↑↓ field · enter edit · ←→ integrator · s start · esc back"))
	return st.panel.Render(b.String())
}

// RunMenu starts the preset picker and blocks until it exits.
func RunMenu(logger *slog.Logger, observers ...dynamo.Observer) error {
	_, err := tea.NewProgram(NewMenu(logger, observers...), tea.WithAltScreen()).Run()
	return err
}
