package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"educaconecta/internal/api"
)

// composeView is the new-topic form: subject picker, title, body.
type composeView struct {
	subjects []api.Subject
	subject  int

	title   textinput.Model
	content textarea.Model

	focus int
}

func newComposeView(subjects []api.Subject) *composeView {
	title := textinput.New()
	title.Placeholder = "Título da dúvida"
	title.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "Descreva sua dúvida..."
	content.SetHeight(6)

	return &composeView{subjects: subjects, title: title, content: content}
}

func (v *composeView) focusCmd() tea.Cmd {
	v.focus = 0
	return nil
}

func (v *composeView) update(a *App, msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "esc":
		a.screen = screenTopics
		return nil
	case "tab":
		v.focus = (v.focus + 1) % 3
		return v.applyFocus()
	case "shift+tab":
		v.focus = (v.focus + 2) % 3
		return v.applyFocus()
	case "ctrl+d":
		return v.submitCmd(a)
	}

	switch v.focus {
	case 0:
		switch key.String() {
		case "left", "h", "up", "k":
			if v.subject > 0 {
				v.subject--
			}
		case "right", "l", "down", "j":
			if v.subject < len(v.subjects)-1 {
				v.subject++
			}
		}
		return nil
	case 1:
		var cmd tea.Cmd
		v.title, cmd = v.title.Update(msg)
		return cmd
	default:
		var cmd tea.Cmd
		v.content, cmd = v.content.Update(msg)
		return cmd
	}
}

func (v *composeView) applyFocus() tea.Cmd {
	v.title.Blur()
	v.content.Blur()
	switch v.focus {
	case 1:
		return v.title.Focus()
	case 2:
		return v.content.Focus()
	}
	return nil
}

func (v *composeView) submitCmd(a *App) tea.Cmd {
	if len(v.subjects) == 0 {
		return nil
	}
	subjectID := v.subjects[v.subject].ID
	title := v.title.Value()
	content := v.content.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		topic, err := a.forum.CreateTopic(ctx, title, content, subjectID)
		return topicCreatedMsg{topic: topic, err: err}
	}
}

func (v *composeView) view(_ *App) string {
	body := titleStyle.Render("Novo tópico") + "\n"

	subjectLine := dimStyle.Render("matéria: ")
	for i, subject := range v.subjects {
		label := subject.Name
		if i == v.subject {
			if v.focus == 0 {
				label = selectedStyle.Render("[" + label + "]")
			} else {
				label = headerStyle.Render(label)
			}
		} else {
			label = dimStyle.Render(label)
		}
		subjectLine += label + "  "
	}
	body += subjectLine + "\n\n"
	body += v.title.View() + "\n\n"
	body += v.content.View() + "\n"

	return boxStyle.Render(body) + helpStyle.Render("tab navega · ctrl+d publica · esc cancela")
}
