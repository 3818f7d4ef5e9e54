// Package tui shows a maser run live in the terminal: level
// populations and mean photon number updating as the solver steps.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/masersim/internal/lindblad"
	"github.com/san-kum/masersim/internal/linalg"
	"github.com/san-kum/masersim/internal/maser"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the solver a fixed number of output intervals per frame
// and plots the sampled observables.
type Model struct {
	sys     *maser.System
	dyn     lindblad.Dynamics
	stepper lindblad.Stepper

	rho      *linalg.Matrix
	t        float64
	dt       float64
	duration float64

	stepsPerFrame int
	frameRate     int
	running       bool
	done          bool

	popHistory [3][]float64
	numHistory []float64
}

func NewModel(sys *maser.System, stepper lindblad.Stepper, dt, duration float64, frameRate int) (*Model, error) {
	lv, err := lindblad.NewLiouvillian(sys.H, sys.Jumps)
	if err != nil {
		return nil, err
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Model{
		sys:           sys,
		dyn:           lv,
		stepper:       stepper,
		rho:           sys.InitialState(),
		dt:            dt,
		duration:      duration,
		stepsPerFrame: 2,
		frameRate:     frameRate,
		running:       true,
		numHistory:    make([]float64, 0, historyCapacity),
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame && m.t < m.duration; i++ {
		m.rho = m.stepper.Step(m.dyn, m.rho, m.t, m.dt)
		m.t += m.dt
		if !m.rho.IsFinite() {
			m.done = true
			return
		}
		m.record()
	}
	if m.t >= m.duration {
		m.done = true
	}
}

func (m *Model) record() {
	ops := []*linalg.Matrix{m.sys.P1, m.sys.P2, m.sys.P3}
	for i, op := range ops {
		m.popHistory[i] = appendCapped(m.popHistory[i], real(linalg.Expect(op, m.rho)))
	}
	m.numHistory = appendCapped(m.numHistory, real(linalg.Expect(m.sys.Num, m.rho)))
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) >= historyCapacity {
		s = s[1:]
	}
	return append(s, v)
}

func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("three-level maser — live"))
	sb.WriteString("\n")

	status := "running"
	if !m.running {
		status = "paused"
	}
	if m.done {
		status = "finished"
	}

	rows := []struct {
		label string
		value string
	}{
		{"t", fmt.Sprintf("%.2f / %.2f", math.Min(m.t, m.duration), m.duration)},
		{"status", status},
	}
	if n := len(m.numHistory); n > 0 {
		rows = append(rows,
			struct{ label, value string }{"<a†a>", fmt.Sprintf("%.4f", m.numHistory[n-1])},
			struct{ label, value string }{"p1/p2/p3", fmt.Sprintf("%.3f / %.3f / %.3f",
				m.popHistory[0][n-1], m.popHistory[1][n-1], m.popHistory[2][n-1])},
		)
	}
	for _, r := range rows {
		sb.WriteString(labelStyle.Render(r.label))
		sb.WriteString(valueStyle.Render(r.value))
		sb.WriteString("\n")
	}

	if len(m.numHistory) > 1 {
		pops := [][]float64{m.popHistory[0], m.popHistory[1], m.popHistory[2]}
		sb.WriteString(graphStyle.Render(asciigraph.PlotMany(pops,
			asciigraph.Height(8),
			asciigraph.Width(78),
			asciigraph.Caption("populations"),
		)))
		sb.WriteString("\n")
		sb.WriteString(graphStyle.Render(asciigraph.Plot(m.numHistory,
			asciigraph.Height(8),
			asciigraph.Width(78),
			asciigraph.Caption("photon number"),
		)))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("space pause · q quit"))
	return sb.String()
}

// Run starts the live view and blocks until it exits.
func Run(sys *maser.System, stepper lindblad.Stepper, dt, duration float64, frameRate int) error {
	m, err := NewModel(sys, stepper, dt, duration, frameRate)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
