package tui

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragquiz/internal/answer"
	"ragquiz/internal/explain"
	"ragquiz/internal/grader"
	"ragquiz/internal/quiz"
	"ragquiz/internal/retrieval"
)

// TutorPort is the TUI-facing subset of the tutor service.
type TutorPort interface {
	Ask(ctx context.Context, query string, k int) answer.Answer
	GenerateQuiz(ctx context.Context, topic string, n int, seed *uint64) (quiz.Quiz, error)
	Grade(ctx context.Context, items []quiz.Item, responses []any) (grader.Result, error)
	Explain(ctx context.Context, term string) (explain.Explanation, error)
}

type mode int

const (
	modeAsk mode = iota
	modeQuiz
	modeResult
)

// Model is the Bubble Tea model for the tutor. In ask mode Enter sends a
// question; "/quiz [topic]" starts a quiz and "/explain <term>" looks a
// term up. In quiz mode each Enter records an answer; after the last item
// the quiz is graded. Esc returns to ask mode.
type Model struct {
	service   TutorPort
	input     textinput.Model
	viewport  viewport.Model
	summary   string
	status    string
	ready     bool
	mode      mode
	lastQuery string
	answer    answer.Answer
	k         int
	items     int

	quiz      quiz.Quiz
	current   int
	responses []any
	result    grader.Result
}

// New creates a new TUI model instance. summary is shown under the title.
func New(service TutorPort, summary string, k, items int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, /quiz [topic] or /explain <term>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{service: service, input: ti, viewport: vp, summary: summary, k: k, items: items,
		status: "Ready. Ask a question or start a quiz."}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderContent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyEsc:
			if m.mode != modeAsk {
				m.mode = modeAsk
				m.status = "Back to questions."
				m.input.SetValue("")
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil
		case tea.KeyEnter:
			m = m.submit(strings.TrimSpace(m.input.Value()))
			m.input.SetValue("")
			m.viewport.SetContent(m.renderContent())
			return m, nil
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(text string) Model {
	ctx := context.Background()
	if m.mode == modeQuiz {
		item := m.quiz.Items[m.current]
		m.responses = append(m.responses, parseResponse(item, text))
		m.current++
		if m.current < len(m.quiz.Items) {
			m.status = fmt.Sprintf("Question %d/%d", m.current+1, len(m.quiz.Items))
			return m
		}
		res, err := m.service.Grade(ctx, m.quiz.Items, m.responses)
		if err != nil {
			m.status = "Error: " + err.Error()
			m.mode = modeAsk
			return m
		}
		m.result = res
		m.mode = modeResult
		m.status = fmt.Sprintf("Score %d/%d. Esc to continue.", res.Score, res.Total)
		return m
	}

	if text == "" {
		return m
	}
	m.mode = modeAsk
	switch {
	case text == "/quiz" || strings.HasPrefix(text, "/quiz "):
		topic := strings.TrimSpace(strings.TrimPrefix(text, "/quiz"))
		q, err := m.service.GenerateQuiz(ctx, topic, m.items, nil)
		if err != nil {
			m.status = "Error: " + err.Error()
			return m
		}
		if len(q.Items) == 0 {
			m.status = fmt.Sprintf("No quiz items could be generated for %q.", q.Topic)
			return m
		}
		m.quiz, m.current, m.responses = q, 0, make([]any, 0, len(q.Items))
		m.mode = modeQuiz
		m.status = fmt.Sprintf("Question 1/%d", len(q.Items))
	case strings.HasPrefix(text, "/explain "):
		term := strings.TrimSpace(strings.TrimPrefix(text, "/explain "))
		e, err := m.service.Explain(ctx, term)
		if err != nil {
			m.status = "Error: " + err.Error()
			return m
		}
		m.lastQuery = term
		m.answer = answer.Answer{Text: e.Explanation}
		m.status = fmt.Sprintf("Explanation of %q", term)
	default:
		m.lastQuery = text
		m.answer = m.service.Ask(ctx, text, m.k)
		m.status = fmt.Sprintf("Answer to %q", text)
	}
	return m
}

// parseResponse maps typed input onto a grader response. Empty input
// leaves the answer absent.
func parseResponse(it quiz.Item, text string) any {
	if text == "" {
		return nil
	}
	switch it.Type {
	case quiz.TypeTF:
		switch strings.ToLower(text) {
		case "t", "true", "y", "yes":
			return true
		case "f", "false", "n", "no":
			return false
		}
	case quiz.TypeMCQ:
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(it.Options) {
			return it.Options[n-1]
		}
	}
	return text
}

// View renders the TUI layout and current content.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RAG Quiz Tutor")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(firstLine(m.summary))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	content := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + content + "\n" + input + "\n" + status
}

func (m Model) renderContent() string {
	switch m.mode {
	case modeQuiz:
		return renderItem(m.current, len(m.quiz.Items), m.quiz.Items[m.current])
	case modeResult:
		return renderResult(m.result)
	}
	if m.answer.Text == "" {
		return "No answer yet."
	}
	body, cites, found := strings.Cut(m.answer.Text, "\n\nSources: ")
	out := highlightBestSentence(body, m.lastQuery)
	if found {
		out += "\n\n" + sourceStyle.Render("Sources: "+cites)
	}
	return out
}

func renderItem(i, total int, it quiz.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d/%d  [%s]\n\n%s\n", i+1, total, strings.ToUpper(string(it.Type)), it.Question)
	for j, opt := range it.Options {
		fmt.Fprintf(&b, "\n  %d) %s", j+1, opt)
	}
	switch it.Type {
	case quiz.TypeTF:
		b.WriteString("\n\nAnswer t or f.")
	case quiz.TypeMCQ:
		b.WriteString("\n\nAnswer with a number or the option text.")
	default:
		b.WriteString("\n\nAnswer in your own words.")
	}
	b.WriteString(" Empty Enter skips.")
	return b.String()
}

func renderResult(res grader.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d/%d\n", res.Score, res.Total)
	for i, d := range res.Details {
		mark := wrongStyle.Render("✗")
		if d.Correct {
			mark = rightStyle.Render("✓")
		}
		your := "(none)"
		if d.YourAnswer != nil {
			your = fmt.Sprint(d.YourAnswer)
		}
		fmt.Fprintf(&b, "\n%s %d. %s\n   your answer: %s\n   expected: %s\n   %s",
			mark, i+1, d.Question, your, d.Expected, sourceStyle.Render(d.Rationale))
		if len(d.Sources) > 0 {
			b.WriteString(sourceStyle.Render("  [" + strings.Join(d.Sources, ", ") + "]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	rightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	wrongStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := retrieval.TokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1.0
	for i, s := range sentences {
		score := retrieval.Ochiai(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
