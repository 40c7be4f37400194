package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0a84ff"))

	chefStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#30d158"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// chatLine is one rendered transcript entry
type chatLine struct {
	speaker string
	text    string
}

// Model defines the application state
type Model struct {
	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model
	client    *ApiClient
	history   []chatLine
	loading   bool
	ready     bool
	error     string
	width     int
}

// replyMsg carries an assistant reply back into the update loop
type replyMsg struct {
	text string
	err  error
}

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Ask about a dish, a substitution, or food safety..."
	ti.Focus()
	ti.CharLimit = 500

	client := NewApiClient()
	var errMsg string
	if ok, err := client.CheckHealth(); !ok {
		errMsg = fmt.Sprintf("Cannot reach ChefAI at %s: %v", client.BaseURL, err)
	} else if err := client.StartSession(); err != nil {
		// Fall back to the shared default session
		errMsg = fmt.Sprintf("Session creation failed, using default session: %v", err)
	}

	return Model{
		textInput: ti,
		spinner:   s,
		client:    client,
		error:     errMsg,
		history: []chatLine{
			{speaker: "ChefAI", text: "Welcome to the kitchen! What would you like to cook today?"},
		},
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// sendTurn fires the chat request off the update loop
func (m Model) sendTurn(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.client.Chat(text)
		return replyMsg{text: reply, err: err}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.textInput.Value())
			if text == "" || m.loading {
				return m, nil
			}
			if text == "/quit" || text == "/exit" {
				return m, tea.Quit
			}
			m.history = append(m.history, chatLine{speaker: "You", text: text})
			m.textInput.Reset()
			m.loading = true
			m.error = ""
			m.refreshViewport()
			return m, tea.Batch(m.sendTurn(text), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		headerHeight := 3
		footerHeight := 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshViewport()

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.error = msg.err.Error()
		} else {
			m.history = append(m.history, chatLine{speaker: "ChefAI", text: msg.text})
		}
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refreshViewport rebuilds the transcript view and scrolls to the bottom
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, line := range m.history {
		style := chefStyle
		if line.speaker == "You" {
			style = userStyle
		}
		b.WriteString(style.Render(line.speaker+":") + " " + line.text + "\n\n")
	}

	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
	m.viewport.GotoBottom()
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Setting the table..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ChefAI") + "\n\n")
	b.WriteString(m.viewport.View() + "\n")

	if m.error != "" {
		b.WriteString(errorStyle.Render(m.error) + "\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " Cooking up an answer...\n")
	} else {
		b.WriteString(m.textInput.View() + "\n")
	}

	b.WriteString(helpStyle.Render("enter: send • /quit or esc: exit"))
	return docStyle.Render(b.String())
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running ChefAI CLI: %v\n", err)
		os.Exit(1)
	}
}
