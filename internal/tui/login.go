package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"educaconecta/internal/api"
)

// loginView covers both sign in and sign up; ctrl+s flips between them.
type loginView struct {
	signup bool

	name     textinput.Model
	email    textinput.Model
	password textinput.Model
	role     api.UserRole

	focus int
}

func newLoginView() *loginView {
	name := textinput.New()
	name.Placeholder = "Nome completo"
	name.CharLimit = 80

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "Senha"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 80

	return &loginView{
		name:     name,
		email:    email,
		password: password,
		role:     api.RoleLearner,
	}
}

func (v *loginView) focusCmd() tea.Cmd {
	return v.applyFocus()
}

// fields returns the visible inputs in tab order.
func (v *loginView) fields() []*textinput.Model {
	if v.signup {
		return []*textinput.Model{&v.name, &v.email, &v.password}
	}
	return []*textinput.Model{&v.email, &v.password}
}

func (v *loginView) applyFocus() tea.Cmd {
	fields := v.fields()
	if v.focus >= len(fields) {
		v.focus = len(fields) - 1
	}
	var cmd tea.Cmd
	for i, field := range fields {
		if i == v.focus {
			cmd = field.Focus()
		} else {
			field.Blur()
		}
	}
	return cmd
}

func (v *loginView) update(a *App, msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			v.signup = !v.signup
			v.focus = 0
			return v.applyFocus()
		case "tab", "down":
			v.focus = (v.focus + 1) % len(v.fields())
			return v.applyFocus()
		case "shift+tab", "up":
			v.focus = (v.focus - 1 + len(v.fields())) % len(v.fields())
			return v.applyFocus()
		case "ctrl+r":
			if v.signup {
				if v.role == api.RoleLearner {
					v.role = api.RoleVolunteer
				} else {
					v.role = api.RoleLearner
				}
			}
			return nil
		case "enter":
			return v.submitCmd(a)
		case "esc":
			return tea.Quit
		}
	}

	var cmds []tea.Cmd
	for _, field := range v.fields() {
		var cmd tea.Cmd
		*field, cmd = field.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (v *loginView) submitCmd(a *App) tea.Cmd {
	signup := v.signup
	name := v.name.Value()
	email := v.email.Value()
	password := v.password.Value()
	role := v.role
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if signup {
			user, err := a.sess.Signup(ctx, email, password, name, role)
			return signedInMsg{user: user, err: err}
		}
		user, err := a.sess.Login(ctx, email, password)
		return signedInMsg{user: user, err: err}
	}
}

func (v *loginView) view(_ *App) string {
	title := "EducaConecta · Entrar"
	if v.signup {
		title = "EducaConecta · Criar conta"
	}

	body := titleStyle.Render(title) + "\n"
	if v.signup {
		body += v.name.View() + "\n"
	}
	body += v.email.View() + "\n" + v.password.View() + "\n"
	if v.signup {
		role := "quero aprender"
		if v.role == api.RoleVolunteer {
			role = "quero ensinar"
		}
		body += dimStyle.Render("perfil: ") + selectedStyle.Render(role) + dimStyle.Render("  (ctrl+r alterna)") + "\n"
	}

	help := "enter confirma · tab navega · ctrl+s "
	if v.signup {
		help += "voltar ao login"
	} else {
		help += "criar conta"
	}
	help += " · esc sai"
	return boxStyle.Render(body) + helpStyle.Render(help)
}
