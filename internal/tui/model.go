package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lawsearch/internal/domain"
	"lawsearch/internal/explain"
)

// SearchPort is the TUI-facing subset of the search service.
type SearchPort interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
	SearchByCategory(ctx context.Context, category string, size int) ([]domain.SearchResult, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
}

// Options controls how the TUI issues searches and renders hits.
type Options struct {
	Size    int
	Explain bool
}

// Model is the Bubble Tea model for the interactive search session.
type Model struct {
	service  SearchPort
	opts     Options
	input    textinput.Model
	viewport viewport.Model
	results  []domain.SearchResult
	status   string
	cursor   int
	ready    bool
	showHelp bool
}

// New creates a new TUI model instance.
func New(service SearchPort, opts Options) Model {
	if opts.Size <= 0 {
		opts.Size = 10
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "검색어 입력 (help: 명령어 목록)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, opts: opts, input: ti, viewport: vp, status: "Index ready. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line != "" {
				m.input.SetValue("")
				return m.execute(line)
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderContent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute dispatches one input line: a command keyword, a category browse
// or a plain search query.
func (m Model) execute(line string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	m.showHelp = false

	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return m, tea.Quit
	case "help", "h":
		m.showHelp = true
		m.status = "Commands"
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case "stats", "stat":
		stats, err := m.service.Statistics(ctx)
		if err != nil {
			m.status = "Error: " + err.Error()
			m.viewport.SetContent(m.renderContent())
			return m, nil
		}
		m.status = "Index statistics"
		m.viewport.SetContent(renderStats(stats))
		return m, nil
	}

	var (
		results []domain.SearchResult
		err     error
	)
	if category, ok := strings.CutPrefix(line, "category:"); ok {
		category = strings.TrimSpace(category)
		results, err = m.service.SearchByCategory(ctx, category, m.opts.Size)
		m.status = fmt.Sprintf("Category %q", category)
	} else {
		results, err = m.service.Search(ctx, line, domain.SearchOptions{Size: m.opts.Size, Explain: m.opts.Explain})
		m.status = fmt.Sprintf("Results for %q", line)
	}
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		// nothing searchable in the input; treat like an empty result set
		m.results = nil
		m.status = fmt.Sprintf("Results for %q (no matches)", line)
	case err != nil:
		m.status = "Error: " + err.Error()
		m.results = nil
	default:
		m.results = results
		m.cursor = 0
		if len(results) == 0 {
			m.status += " (no matches)"
		}
	}
	m.viewport.SetContent(m.renderContent())
	return m, nil
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Law Search")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderContent() string {
	if m.showHelp {
		return helpText
	}
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Result %d/%d  score=%.3f\n", m.cursor+1, len(m.results), r.Score)
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(r.Record.Title))
	fmt.Fprintf(&b, "page %d | %s | %s\n\n", r.Record.PageNumber, r.Record.Category, r.Record.FilePath)
	for _, field := range []string{"title", "content"} {
		for _, fragment := range r.Highlights[field] {
			b.WriteString(fragment)
			b.WriteString("\n")
		}
	}
	if r.Explanation != nil {
		b.WriteString("\n" + sectionStyle.Render("score breakdown") + "\n")
		b.WriteString(explain.Render(r.Explanation))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStats(stats domain.Statistics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "documents: %d\n", stats.TotalDocuments)
	fmt.Fprintf(&b, "cluster:   %s\n", stats.Health.ClusterStatus)
	fmt.Fprintf(&b, "connected: %t\n\n", stats.Health.Connected)
	b.WriteString("categories:\n")
	for label, count := range stats.Categories {
		fmt.Fprintf(&b, "  %s: %d\n", label, count)
	}
	return strings.TrimRight(b.String(), "\n")
}

const helpText = `Commands:

  <query>            search the indexed pages
  category:<name>    browse every page of one category
  stats              index statistics
  help               this screen
  quit               exit

Up/Down moves between results.`

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
