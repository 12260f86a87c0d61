package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"educaconecta/internal/api"
	"educaconecta/internal/forum"
)

// detailView shows one topic with its discussion thread.
type detailView struct {
	topic   *api.ForumTopic
	replies []api.ForumReply
	cursor  int

	composing bool
	compose   textarea.Model
}

func newDetailView() *detailView {
	compose := textarea.New()
	compose.Placeholder = "Escreva sua resposta..."
	compose.SetHeight(4)
	return &detailView{compose: compose}
}

func (v *detailView) sync(ctrl *forum.Controller) {
	v.topic = ctrl.Current()
	v.replies = ctrl.Replies()
	if v.cursor >= len(v.replies) {
		v.cursor = len(v.replies) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *detailView) selected() (api.ForumReply, bool) {
	if v.cursor < len(v.replies) {
		return v.replies[v.cursor], true
	}
	return api.ForumReply{}, false
}

func (v *detailView) update(a *App, msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if v.composing {
		switch key.String() {
		case "esc":
			v.composing = false
			v.compose.Blur()
			return nil
		case "ctrl+d":
			content := v.compose.Value()
			v.composing = false
			v.compose.Reset()
			v.compose.Blur()
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				_, err := a.forum.CreateReply(ctx, content)
				return replyPostedMsg{err: err}
			}
		default:
			var cmd tea.Cmd
			v.compose, cmd = v.compose.Update(msg)
			return cmd
		}
	}

	switch key.String() {
	case "esc", "q":
		a.screen = screenTopics
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			a.forum.CloseTopic(ctx)
			return topicsLoadedMsg{}
		}
	case "j", "down":
		if v.cursor < len(v.replies)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "a":
		v.composing = true
		return v.compose.Focus()
	case "l":
		reply, ok := v.selected()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			_, err := a.forum.LikeReply(ctx, reply)
			return replyChangedMsg{err: err}
		}
	case "x":
		reply, ok := v.selected()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			_, err := a.forum.AcceptReply(ctx, reply)
			return replyChangedMsg{err: err}
		}
	case "d":
		reply, ok := v.selected()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return replyChangedMsg{err: a.forum.DeleteReply(ctx, reply)}
		}
	case "D":
		if v.topic == nil || !a.forum.CanEditTopic(*v.topic) {
			return nil
		}
		a.screen = screenTopics
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return topicsLoadedMsg{err: a.forum.DeleteTopic(ctx)}
		}
	}
	return nil
}

func (v *detailView) view(a *App) string {
	if v.topic == nil {
		return dimStyle.Render("nenhum tópico aberto")
	}

	body := titleStyle.Render(v.topic.Title) + "\n"
	meta := fmt.Sprintf("%s · %s · %d visualizações", v.topic.AuthorName, v.topic.CreatedAt.Format("02/01/2006"), v.topic.ViewsCount)
	if v.topic.IsResolved {
		meta += " · " + resolvedStyle.Render("resolvido")
	}
	body += dimStyle.Render(meta) + "\n\n"
	body += v.topic.Content + "\n\n"
	body += headerStyle.Render(fmt.Sprintf("Respostas (%d)", v.topic.RepliesCount)) + "\n"

	if len(v.replies) == 0 {
		body += dimStyle.Render("Seja o primeiro a responder (a).") + "\n"
	}
	for i, reply := range v.replies {
		header := fmt.Sprintf("%s · %d curtidas", reply.AuthorName, reply.LikesCount)
		if reply.IsAccepted {
			header += " · " + acceptedStyle.Render("✓ aceita")
		}
		if i == v.cursor {
			body += selectedStyle.Render("> "+header) + "\n"
		} else {
			body += "  " + dimStyle.Render(header) + "\n"
		}
		body += "  " + reply.Content + "\n"
	}

	if v.composing {
		body += "\n" + v.compose.View() + "\n"
		return body + helpStyle.Render("ctrl+d envia · esc cancela")
	}

	help := "a responde · l curte · j/k navega · esc volta"
	if current, ok := v.selected(); ok && v.topic != nil && a.forum.CanEditTopic(*v.topic) && !current.IsAccepted {
		help = "x aceita resposta · " + help
	}
	if current, ok := v.selected(); ok && a.forum.CanEditReply(current) {
		help = "d exclui resposta · " + help
	}
	if a.forum.CanEditTopic(*v.topic) {
		help += " · D exclui tópico"
	}
	return body + helpStyle.Render(help)
}
