package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Model is the Bubble Tea model for the watch command.
type Model struct {
	RequestID string
	Record    *nsapi.ProvisioningRequest

	SpinnerFrame int
	StartTime    time.Time

	Width  int
	Height int
	Err    error
	Done   bool
}

// NewWatchModel creates a model following one provisioning request.
func NewWatchModel(requestID string) Model {
	return Model{
		RequestID: requestID,
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case RecordMsg:
		m.Record = msg.Record
		if msg.Record.Phase.Terminal() {
			m.Done = true
			return m, tea.Quit
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
