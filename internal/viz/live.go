package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/world"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 60
)

type TickMsg time.Time

// Builder rebuilds the scene on reset.
type Builder func() (*world.World, error)

// Model steps a world in real time and draws it.
type Model struct {
	build     Builder
	world     *world.World
	sceneName string
	dt        float64
	// substeps is the number of world steps per frame.
	substeps int

	canvas   *Canvas
	viewport Viewport

	running  bool
	showHelp bool
	theme    int
	styles   styles

	energyHistory []float64
	err           error
}

// NewModel builds the scene once and prepares the view. dt is the world
// step; enough steps run per frame to keep up with real time.
func NewModel(sceneName string, build Builder, dt float64) (Model, error) {
	w, err := build()
	if err != nil {
		return Model{}, err
	}
	c := NewCanvas(width, height)
	return Model{
		build:         build,
		world:         w,
		sceneName:     sceneName,
		dt:            dt,
		substeps:      max(1, int(1/(dt*frameRate)+0.5)),
		canvas:        c,
		viewport:      FitViewport(c, w),
		running:       true,
		styles:        newStyles(themes[0]),
		energyHistory: make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) World() *world.World { return m.world }

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "+", "=":
			m.viewport = m.viewport.Zoom(1.25)
		case "-", "_":
			m.viewport = m.viewport.Zoom(0.8)
		case "t":
			m.theme = (m.theme + 1) % len(themes)
			m.styles = newStyles(themes[m.theme])
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			for range m.substeps {
				m.step()
				if m.err != nil {
					m.running = false
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.world.Step(m.dt); err != nil {
		m.err = err
		return
	}
	m.energyHistory = append(m.energyHistory, sim.Energy(m.world))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) reset() {
	w, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.world = w
	m.err = nil
	m.energyHistory = m.energyHistory[:0]
}

// View renders the TUI interface.
func (m Model) View() string {
	m.canvas.Clear()
	DrawWorld(m.canvas, m.viewport, m.world)
	canvasView := m.styles.canvas.Render(m.canvas.String())

	st := m.styles
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.sceneName)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.paused.Render("ERROR: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(st.status.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	w := m.world
	contacts := 0
	if w.Nearphase != nil {
		contacts = len(w.Nearphase.ContactEquations())
	}
	energy := 0.0
	if n := len(m.energyHistory); n > 0 {
		energy = m.energyHistory[n-1]
	}
	rows := [][2]string{
		{"Time", fmt.Sprintf("%.2fs", w.Time)},
		{"Step", fmt.Sprintf("%d", w.StepNumber)},
		{"Bodies", fmt.Sprintf("%d", len(w.Bodies()))},
		{"Contacts", fmt.Sprintf("%d", contacts)},
		{"Energy", fmt.Sprintf("%.2f", energy)},
		{"Step time", w.LastStepTime.String()},
		{"Zoom", fmt.Sprintf("%.1f px/m", m.viewport.Scale)},
	}
	for _, r := range rows {
		s.WriteString(st.label.Render(r[0]) + st.value.Render(r[1]) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause N:Step R:Reset Q:Quit\n+/-:Zoom T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single step when paused  ║
║  R        - Rebuild the scene        ║
║  + / -    - Zoom in / out            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
