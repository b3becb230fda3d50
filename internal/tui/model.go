package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"doccluster/internal/domain"
)

// ClusterPort is the TUI-facing subset of the clustering service.
type ClusterPort interface {
	RunRaw(rawDocs []string, kRaw string) (*domain.Result, error)
}

// Model is the Bubble Tea model for browsing clusters.
type Model struct {
	service  ClusterPort
	docs     []string
	input    textinput.Model
	viewport viewport.Model
	result   *domain.Result
	status   string
	cursor   int
	ready    bool
}

// New creates a TUI model over docs with an initial result.
func New(service ClusterPort, docs []string, result *domain.Result) Model {
	ti := textinput.New()
	ti.Prompt = "k> "
	ti.Placeholder = "Type a cluster count and press Enter"
	ti.Focus()
	ti.CharLimit = 6
	vp := viewport.New(0, 0)
	m := Model{service: service, docs: docs, input: ti, viewport: vp, result: result}
	m.status = m.summaryLine()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := clusterBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + keywords, status, input, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-bh)
		m.viewport.SetContent(m.renderCurrentCluster())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			k := strings.TrimSpace(m.input.Value())
			if k != "" {
				res, err := m.service.RunRaw(m.docs, k)
				if err != nil {
					m.status = "Error: " + err.Error()
				} else {
					m.result = res
					m.cursor = 0
					m.status = m.summaryLine()
				}
				m.input.SetValue("")
				m.viewport.SetContent(m.renderCurrentCluster())
				return m, nil
			}
		case "down", "tab":
			if n := m.clusterCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrentCluster())
				return m, nil
			}
		case "up", "shift+tab":
			if n := m.clusterCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrentCluster())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout and the selected cluster.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Document Clusters")
	keywords := keywordStyle.Render(m.keywordLine())
	body := clusterBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + keywords + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) clusterCount() int {
	if m.result == nil {
		return 0
	}
	return len(m.result.Clusters)
}

func (m Model) summaryLine() string {
	n := m.clusterCount()
	if n == 0 {
		return "No clusters."
	}
	return fmt.Sprintf("%d documents in %d clusters. Up/down to browse, Esc to quit.", len(m.docs), n)
}

func (m Model) keywordLine() string {
	if m.clusterCount() == 0 {
		return ""
	}
	return "Keywords: " + strings.Join(m.result.Clusters[m.cursor].Keywords, ", ")
}

func (m Model) renderCurrentCluster() string {
	if m.clusterCount() == 0 {
		return "No clusters yet."
	}
	c := m.result.Clusters[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Cluster %d/%d  (%d documents)\n\n", c.ID+1, len(m.result.Clusters), len(c.Documents))
	if len(c.Documents) == 0 {
		b.WriteString("(empty)")
	}
	for i, d := range c.Documents {
		fmt.Fprintf(&b, "%s %s\n", bulletStyle.Render(fmt.Sprintf("%d.", i+1)), d)
	}
	return b.String()
}

var (
	clusterBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	keywordStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bulletStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
