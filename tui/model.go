// Package tui is a terminal monitor for the mirror: a live mixer and clip
// grid fed from the song-wide event sink.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	liveosc "github.com/dinchak/go-liveosc"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	trackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	returnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type Model struct {
	Song     *liveosc.Song
	updates  chan struct{}
	quitting bool
}

// UpdateMsg means some mirrored state changed and the view is stale.
type UpdateMsg struct{}

// NewModel builds the monitor and wires it to the song's global sink. The
// sink callback only nudges a channel; rendering reads the mirror from the
// bubbletea goroutine.
func NewModel(song *liveosc.Song) Model {
	m := Model{
		Song:    song,
		updates: make(chan struct{}, 1),
	}
	song.OnAnyGlobal(func(event string, c liveosc.Change) {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	})
	song.On("ready", func(c liveosc.Change) {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	})
	return m
}

func listenForUpdates(updates chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case " ":
			if m.Song.Playing() {
				m.Song.Stop()
			} else {
				m.Song.Play()
			}

		case "r":
			m.Song.Refresh()

		case "+", "=":
			m.Song.SetTempo(m.Song.Tempo() + 1)

		case "-", "_":
			m.Song.SetTempo(m.Song.Tempo() - 1)

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.Song.PlayScene(int(msg.String()[0] - '1'))
		}

	case UpdateMsg:
		return m, listenForUpdates(m.updates)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var out strings.Builder
	out.WriteString(headerStyle.Render("go-liveosc monitor"))
	out.WriteString("  ")
	if m.Song.Playing() {
		out.WriteString(playingStyle.Render("▶ playing"))
	} else {
		out.WriteString(stoppedStyle.Render("■ stopped"))
	}
	fmt.Fprintf(&out, "  %.1f bpm  beat %d  scene %d\n\n",
		m.Song.Tempo(), m.Song.Beat(), m.Song.Scene())

	tracks := m.Song.Tracks()
	if len(tracks) == 0 {
		out.WriteString(dimStyle.Render("waiting for Live...") + "\n")
	}

	for _, t := range tracks {
		out.WriteString(renderStrip(trackStyle, trackLabel(t.ID(), t.Name()),
			t.Volume(), t.Pan(), t.Mute(), t.Solo()))
		out.WriteString("  ")
		out.WriteString(renderClips(t))
		out.WriteString("\n")
	}

	for _, r := range m.Song.Returns() {
		out.WriteString(renderStrip(returnStyle, trackLabel(r.ID(), r.Name()),
			r.Volume(), r.Pan(), r.Mute(), r.Solo()))
		out.WriteString("\n")
	}

	out.WriteString(renderStrip(headerStyle, "master",
		m.Song.Volume(), m.Song.Pan(), false, false))
	out.WriteString("\n\n")

	out.WriteString(dimStyle.Render("▶ playing  ◆ triggered  · clip  space play/stop  1-9 scene  r refresh  q quit"))
	out.WriteString("\n")
	return out.String()
}

func trackLabel(id int, name string) string {
	if name == "" {
		name = fmt.Sprintf("Track %d", id+1)
	}
	if len(name) > 10 {
		name = name[:10]
	}
	return name
}

// renderStrip draws one mixer channel: name, volume bar, pan, flags.
func renderStrip(style lipgloss.Style, name string, volume, pan float64, mute, solo bool) string {
	flags := ""
	if mute {
		flags += "M"
	}
	if solo {
		flags += "S"
	}
	return fmt.Sprintf("%s %s %+.2f %-2s",
		style.Render(fmt.Sprintf("%-10s", name)), volumeBar(volume), pan, flags)
}

func renderClips(t *liveosc.Track) string {
	var out strings.Builder
	for _, c := range t.Clips() {
		switch c.State() {
		case liveosc.ClipPlaying:
			out.WriteString(playingStyle.Render("▶"))
		case liveosc.ClipTriggered:
			out.WriteString("◆")
		case liveosc.ClipStopped:
			out.WriteString("·")
		default:
			out.WriteString(dimStyle.Render("-"))
		}
		out.WriteString(" ")
	}
	return out.String()
}

func volumeBar(v float64) string {
	const width = 10
	n := int(v*width + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return "[" + strings.Repeat("█", n) + strings.Repeat(" ", width-n) + "]"
}
