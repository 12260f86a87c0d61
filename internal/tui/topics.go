package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"educaconecta/internal/api"
	"educaconecta/internal/forum"
)

type topicsView struct {
	items  []api.ForumTopic
	cursor int

	search       textinput.Model
	searchActive bool
	unresolved   bool
}

func newTopicsView() *topicsView {
	search := textinput.New()
	search.Placeholder = "buscar tópicos"
	search.CharLimit = 120
	return &topicsView{search: search}
}

// sync pulls the controller's caches into the local list, clamping the
// cursor to the new length.
func (v *topicsView) sync(ctrl *forum.Controller) {
	v.items = ctrl.Topics()
	if v.cursor >= len(v.items) {
		v.cursor = len(v.items) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *topicsView) filters() api.TopicFilters {
	var filters api.TopicFilters
	filters.Search = v.search.Value()
	if v.unresolved {
		resolved := false
		filters.IsResolved = &resolved
	}
	return filters
}

func (v *topicsView) update(a *App, msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if v.searchActive {
		switch key.String() {
		case "enter":
			v.searchActive = false
			v.search.Blur()
			return a.loadTopicsCmd(v.filters())
		case "esc":
			v.searchActive = false
			v.search.SetValue("")
			v.search.Blur()
			return a.loadTopicsCmd(v.filters())
		default:
			var cmd tea.Cmd
			v.search, cmd = v.search.Update(msg)
			return cmd
		}
	}

	switch key.String() {
	case "q":
		return tea.Quit
	case "j", "down":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "enter":
		if v.cursor < len(v.items) {
			return a.openTopicCmd(v.items[v.cursor])
		}
	case "n":
		a.compose = newComposeView(a.forum.Subjects())
		a.screen = screenCompose
		return a.compose.focusCmd()
	case "/":
		v.searchActive = true
		return v.search.Focus()
	case "u":
		v.unresolved = !v.unresolved
		return a.loadTopicsCmd(v.filters())
	case "r":
		return a.loadTopicsCmd(v.filters())
	case "ctrl+l":
		return func() tea.Msg {
			if err := a.sess.Logout(); err != nil {
				return topicsLoadedMsg{err: err}
			}
			return signedOutMsg{}
		}
	}
	return nil
}

func (v *topicsView) view(a *App) string {
	body := titleStyle.Render("Fórum de dúvidas") + "\n"

	if v.searchActive {
		body += v.search.View() + "\n\n"
	} else if v.search.Value() != "" {
		body += dimStyle.Render("busca: "+v.search.Value()) + "\n\n"
	}

	if len(v.items) == 0 {
		body += dimStyle.Render("Nenhum tópico por aqui ainda. Pressione n para abrir o primeiro.") + "\n"
	}

	for i, topic := range v.items {
		line := fmt.Sprintf("[%s] %s", a.forum.SubjectName(topic.SubjectID), topic.Title)
		meta := fmt.Sprintf("  %s · %d respostas · %d visualizações", topic.AuthorName, topic.RepliesCount, topic.ViewsCount)
		if topic.IsResolved {
			meta += " · " + resolvedStyle.Render("resolvido")
		}
		if i == v.cursor {
			body += selectedStyle.Render("> "+line) + "\n"
		} else {
			body += "  " + line + "\n"
		}
		body += dimStyle.Render(meta) + "\n"
	}

	help := "enter abre · n novo tópico · / busca · u só não resolvidos · r atualiza · ctrl+l sair da conta · q fecha"
	if v.unresolved {
		help = "[só não resolvidos] " + help
	}
	return body + helpStyle.Render(help)
}
