// Package tui is the interactive terminal interface: sign in or sign up,
// browse the help forum, read a topic and take part in its discussion.
package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"educaconecta/internal/api"
	"educaconecta/internal/forum"
	"educaconecta/internal/session"
)

// requestTimeout bounds every API call made from the interface so a dead
// backend never freezes the screen.
const requestTimeout = 30 * time.Second

type screen int

const (
	screenLogin screen = iota
	screenTopics
	screenCompose
	screenDetail
)

// Messages shared across screens. Each carries only the error; screens
// re-read the data from the forum controller and session manager.
type (
	signedInMsg struct {
		user *api.User
		err  error
	}
	signedOutMsg    struct{}
	topicsLoadedMsg struct{ err error }
	topicOpenedMsg  struct{ err error }
	topicCreatedMsg struct {
		topic *api.ForumTopic
		err   error
	}
	replyPostedMsg  struct{ err error }
	replyChangedMsg struct{ err error }
)

type App struct {
	client *api.Client
	sess   *session.Manager
	forum  *forum.Controller

	screen screen
	width  int
	height int

	login   *loginView
	topics  *topicsView
	compose *composeView
	detail  *detailView

	status string
	err    string
}

// Run starts the interactive interface and blocks until the user quits.
func Run(client *api.Client, sess *session.Manager, ctrl *forum.Controller) error {
	app := &App{
		client: client,
		sess:   sess,
		forum:  ctrl,
		login:  newLoginView(),
		topics: newTopicsView(),
		detail: newDetailView(),
	}
	if sess.State().Phase == session.SignedIn {
		app.screen = screenTopics
	} else {
		app.screen = screenLogin
	}
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func (a *App) Init() tea.Cmd {
	if a.screen == screenTopics {
		return a.loadTopicsCmd(api.TopicFilters{})
	}
	return a.login.focusCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = typed.Width
		a.height = typed.Height
		return a, nil

	case tea.KeyMsg:
		if typed.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case signedInMsg:
		if typed.err != nil {
			a.err = humanError(typed.err)
			return a, nil
		}
		a.err = ""
		a.status = "Bem-vindo, " + typed.user.Name
		a.screen = screenTopics
		return a, a.loadTopicsCmd(api.TopicFilters{})

	case signedOutMsg:
		a.screen = screenLogin
		a.login = newLoginView()
		a.status = "Sessão encerrada"
		a.err = ""
		return a, a.login.focusCmd()

	case topicsLoadedMsg:
		if typed.err != nil {
			a.err = humanError(typed.err)
			return a, nil
		}
		a.err = ""
		a.topics.sync(a.forum)
		return a, nil

	case topicOpenedMsg:
		if typed.err != nil {
			a.err = humanError(typed.err)
			return a, nil
		}
		a.err = ""
		a.screen = screenDetail
		a.detail.sync(a.forum)
		return a, nil

	case topicCreatedMsg:
		if typed.err != nil {
			a.err = humanError(typed.err)
			return a, nil
		}
		a.err = ""
		a.status = "Tópico publicado"
		a.screen = screenTopics
		a.topics.sync(a.forum)
		return a, nil

	case replyPostedMsg, replyChangedMsg:
		var err error
		if posted, ok := msg.(replyPostedMsg); ok {
			err = posted.err
		} else {
			err = msg.(replyChangedMsg).err
		}
		if err != nil {
			a.err = humanError(err)
			return a, nil
		}
		a.err = ""
		a.detail.sync(a.forum)
		return a, nil
	}

	switch a.screen {
	case screenLogin:
		return a, a.login.update(a, msg)
	case screenTopics:
		return a, a.topics.update(a, msg)
	case screenCompose:
		return a, a.compose.update(a, msg)
	case screenDetail:
		return a, a.detail.update(a, msg)
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.screen {
	case screenLogin:
		body = a.login.view(a)
	case screenTopics:
		body = a.topics.view(a)
	case screenCompose:
		body = a.compose.view(a)
	case screenDetail:
		body = a.detail.view(a)
	}
	if a.err != "" {
		body += "\n" + errorStyle.Render(a.err)
	} else if a.status != "" {
		body += "\n" + statusStyle.Render(a.status)
	}
	return body
}

// --- shared commands ---

func (a *App) loadTopicsCmd(filters api.TopicFilters) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return topicsLoadedMsg{err: a.forum.LoadTopics(ctx, filters)}
	}
}

func (a *App) openTopicCmd(topic api.ForumTopic) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return topicOpenedMsg{err: a.forum.OpenTopic(ctx, topic)}
	}
}

func humanError(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var validation *forum.ValidationError
	if errors.As(err, &validation) {
		return validation.Reason
	}
	var credentials *session.ValidationError
	if errors.As(err, &credentials) {
		return credentials.Reason
	}
	switch {
	case errors.Is(err, forum.ErrNotSignedIn):
		return "Faça login para continuar"
	case errors.Is(err, forum.ErrNotAuthor):
		return "Apenas o autor pode fazer isso"
	}
	return err.Error()
}
