// Package tui is the interactive post-run feedback form.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/psjostrom/springa/internal/model"
	"github.com/psjostrom/springa/internal/store"
)

type viewState int

const (
	categoryView viewState = iota
	effortView
	feltView
	noteView
	confirmationView
)

type Result struct {
	Skipped  bool
	Feedback *model.Feedback
}

type savedMsg struct {
	err error
}

type App struct {
	state  viewState
	cursor int
	effort int
	felt   textinput.Model
	note   textarea.Model
	result *Result
	errMsg string

	date time.Time
	db   *store.DB
}

func NewApp(date time.Time, db *store.DB) *App {
	felt := textinput.New()
	felt.Placeholder = "legs heavy, felt strong, ..."
	felt.CharLimit = 80
	felt.Width = 50

	note := textarea.New()
	note.Placeholder = "Anything else worth remembering?"
	note.CharLimit = 500
	note.SetWidth(60)
	note.SetHeight(3)
	note.ShowLineNumbers = false

	return &App{
		state:  categoryView,
		effort: 3,
		felt:   felt,
		note:   note,
		date:   date,
		db:     db,
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.result = &Result{Skipped: true}
			return a, tea.Quit
		}
	case savedMsg:
		return a.handleSaved(msg)
	}

	switch a.state {
	case categoryView:
		return a.updateCategory(msg)
	case effortView:
		return a.updateEffort(msg)
	case feltView:
		return a.updateFelt(msg)
	case noteView:
		return a.updateNote(msg)
	case confirmationView:
		return a.updateConfirmation(msg)
	}

	return a, nil
}

func (a *App) View() string {
	switch a.state {
	case categoryView:
		return a.viewCategory()
	case effortView:
		return a.viewEffort()
	case feltView:
		return a.viewPrompt("How did it feel?", a.felt.View())
	case noteView:
		return a.viewPrompt("Notes", a.note.View())
	case confirmationView:
		if a.errMsg != "" {
			return errorStyle.Render("Error: ") + a.errMsg + "\n\n" + helpStyle.Render("Press any key to exit")
		}
		return successStyle.Render("Feedback saved!") + "\n\n" + helpStyle.Render("Press any key to exit")
	}
	return ""
}

func (a *App) GetResult() *Result {
	return a.result
}

func (a *App) viewCategory() string {
	header := titleStyle.Render("springa — Run Feedback")
	date := subtitleStyle.Render(a.date.Format("Monday Jan 2"))

	var b strings.Builder
	for i, cat := range model.Categories {
		line := "  " + string(cat)
		if i == a.cursor {
			line = selectedStyle.Render("> " + string(cat))
		}
		b.WriteString(line + "\n")
	}

	help := helpStyle.Render("↑/↓: select • Enter: next • Ctrl+C: cancel")
	return header + "\n" + date + "\n" + b.String() + help
}

func (a *App) viewEffort() string {
	header := titleStyle.Render("springa — Run Feedback")
	label := subtitleStyle.Render("Effort (1 trivial .. 5 maximal)")

	var b strings.Builder
	for i := 1; i <= 5; i++ {
		mark := "  "
		if i == a.effort {
			mark = selectedStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%d\n", mark, i)
	}

	help := helpStyle.Render("↑/↓: select • Enter: next • Ctrl+C: cancel")
	return header + "\n" + label + "\n" + b.String() + help
}

func (a *App) viewPrompt(label, field string) string {
	header := titleStyle.Render("springa — Run Feedback")
	sub := subtitleStyle.Render(label)
	help := helpStyle.Render("Enter: next • Ctrl+C: cancel")
	return header + "\n" + sub + "\n" + field + "\n" + help
}

func (a *App) updateCategory(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(model.Categories)-1 {
				a.cursor++
			}
		case "enter":
			a.state = effortView
		}
	}
	return a, nil
}

func (a *App) updateEffort(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k":
			if a.effort > 1 {
				a.effort--
			}
		case "down", "j":
			if a.effort < 5 {
				a.effort++
			}
		case "enter":
			a.state = feltView
			return a, a.felt.Focus()
		}
	}
	return a, nil
}

func (a *App) updateFelt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "enter" && a.felt.Value() != "" {
			a.state = noteView
			return a, a.note.Focus()
		}
	}

	var cmd tea.Cmd
	a.felt, cmd = a.felt.Update(msg)
	return a, cmd
}

func (a *App) updateNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "enter" {
			return a, a.save()
		}
	}

	var cmd tea.Cmd
	a.note, cmd = a.note.Update(msg)
	return a, cmd
}

func (a *App) updateConfirmation(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.state = confirmationView
		a.errMsg = msg.err.Error()
		return a, nil
	}
	a.state = confirmationView
	return a, nil
}

func (a *App) save() tea.Cmd {
	feedback := model.Feedback{
		Date:     a.date,
		Category: model.Categories[a.cursor],
		Effort:   a.effort,
		Felt:     a.felt.Value(),
		Note:     strings.TrimSpace(a.note.Value()),
	}
	a.result = &Result{Feedback: &feedback}

	return func() tea.Msg {
		if a.db == nil {
			return savedMsg{}
		}
		return savedMsg{err: a.db.InsertFeedback(feedback)}
	}
}
