package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/chateqt/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/chateqt/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/chateqt/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/chateqt/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/chateqt/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/chateqt/internal/core/domain"
)

// Chat commands typed into the input.
const (
	commandReload  = "/reload"
	commandClear   = "/clear"
	commandQuit    = "/quit"
	commandSources = "/sources"
)

// chromeHeight is the rows taken by the title, input and status bar.
const chromeHeight = 6

// Role identifies who wrote a transcript entry.
type Role string

// Transcript roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Entry is one message in the chat transcript.
type Entry struct {
	Role    Role
	Text    string
	Sources domain.Context
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input     *input.QuestionInput
	statusBar *status.Bar
	viewport  viewport.Model

	// transcript holds the conversation for this session only.
	transcript []Entry

	// pending is true while an answer is being generated.
	pending bool

	// showSources renders retrieved sources under each answer.
	showSources bool

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		statusBar: status.NewBar(s, km),
		viewport:  viewport.New(80, 20),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("chateqt - AI trends chat"),
		a.input.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		return a, a.submit(msg.Question)

	case messages.AnswerReceived:
		a.pending = false
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.err = nil
		a.statusBar.SetState(status.StateReady)
		a.transcript = append(a.transcript, Entry{
			Role:    RoleAssistant,
			Text:    msg.Answer.Text,
			Sources: msg.Answer.Sources,
		})
		a.refresh()
		return a, nil

	case messages.PromptsReloaded:
		a.statusBar.SetState(status.StateReady)
		a.statusBar.SetMessage("Prompts reloaded")
		a.appendSystem("Prompt templates reloaded from disk.")
		return a, nil

	case messages.ErrorOccurred:
		a.pending = false
		a.setError(msg.Err)
		return a, nil
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.Send):
		question := strings.TrimSpace(a.input.Value())
		a.input.Reset()
		return a, a.submit(question)

	case keymap.Matches(key, a.keymap.Sources):
		a.toggleSources()
		return a, nil

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit dispatches a chat command or asks a question.
func (a *App) submit(question string) tea.Cmd {
	if question == "" {
		return nil
	}

	switch strings.ToLower(question) {
	case commandQuit:
		return tea.Quit
	case commandClear:
		a.transcript = nil
		a.err = nil
		a.statusBar.SetState(status.StateReady)
		a.refresh()
		return nil
	case commandSources:
		a.toggleSources()
		return nil
	case commandReload:
		return a.reloadPrompts()
	}

	if a.pending {
		a.statusBar.SetMessage("Still answering the previous question")
		return nil
	}

	a.pending = true
	a.err = nil
	a.statusBar.SetState(status.StateThinking)
	a.transcript = append(a.transcript, Entry{Role: RoleUser, Text: question})
	a.refresh()

	return a.ask(question)
}

// ask runs the answer service off the update loop.
func (a *App) ask(question string) tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Answer
	return func() tea.Msg {
		answer, err := svc.Ask(ctx, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

func (a *App) reloadPrompts() tea.Cmd {
	if a.ports.Prompts == nil {
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage("prompt reload not available")
		return nil
	}
	prompts := a.ports.Prompts
	return func() tea.Msg {
		prompts.Reload()
		return messages.PromptsReloaded{}
	}
}

func (a *App) toggleSources() {
	a.showSources = !a.showSources
	if a.showSources {
		a.statusBar.SetMessage("Showing sources")
	} else {
		a.statusBar.SetMessage("Hiding sources")
	}
	a.refresh()
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
	a.appendSystem("Error: " + err.Error())
}

func (a *App) appendSystem(text string) {
	a.transcript = append(a.transcript, Entry{Role: RoleSystem, Text: text})
	a.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (a *App) refresh() {
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.transcript) == 0 {
		return a.styles.Muted.Render("Ask a question about AI trends or the portfolio companies.")
	}

	wrap := lipgloss.NewStyle().Width(max(a.width-2, 20))
	var b strings.Builder
	for i, entry := range a.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch entry.Role {
		case RoleUser:
			b.WriteString(a.styles.User.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(entry.Text))
		case RoleAssistant:
			b.WriteString(a.styles.Assistant.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(entry.Text))
			if a.showSources {
				b.WriteString(a.renderSources(entry.Sources))
			}
		default:
			b.WriteString(a.styles.Muted.Render(entry.Text))
		}
	}
	return b.String()
}

func (a *App) renderSources(sources domain.Context) string {
	if len(sources) == 0 {
		return "\n" + a.styles.Source.Render("(no sources)")
	}
	var b strings.Builder
	for i, doc := range sources {
		line := fmt.Sprintf("[%d] %s", i+1, doc.Index)
		if doc.PageLabel != "" {
			line += " page " + doc.PageLabel
		}
		if src, ok := doc.Metadata[domain.MetaSource].(string); ok && src != "" {
			line += " " + src
		}
		b.WriteString("\n")
		b.WriteString(a.styles.Source.Render(line))
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("chateqt")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.viewport.View(),
		a.input.View(),
		a.statusBar.View(),
	)
}

// Run starts the chat application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Transcript returns a copy of the conversation so far.
func (a *App) Transcript() []Entry {
	out := make([]Entry, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Pending returns true while an answer is being generated.
func (a *App) Pending() bool {
	return a.pending
}

// ShowSources returns true if sources are rendered under answers.
func (a *App) ShowSources() bool {
	return a.showSources
}

// Status returns the status bar state.
func (a *App) Status() status.State {
	return a.statusBar.State()
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready returns true if the app has initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 3)
	a.refresh()
}
