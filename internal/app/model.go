package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/core"
	"github.com/Rorical/katabasis/internal/dispatcher"
	"github.com/Rorical/katabasis/internal/eventbus"
	"github.com/Rorical/katabasis/internal/models"
	"github.com/Rorical/katabasis/internal/session"
	"github.com/Rorical/katabasis/internal/update"
	"github.com/Rorical/katabasis/ui/components"
)

// Deps are the collaborators the root model is built from.
type Deps struct {
	Session    *session.Session
	Backend    Backend
	Bus        *eventbus.EventBus
	Dispatcher *dispatcher.EventDispatcher
	Profile    string
	Persona    string
	Log        *zap.Logger
}

// Model is the root Bubble Tea model. It routes between the login, signup
// and chat views; controllers report navigation and notices through the bus.
type Model struct {
	ctx  context.Context
	deps Deps
	log  *zap.Logger
	auth *core.Authenticator

	view    models.View
	layout  update.Layout
	spinner spinner.Model
	alert   *models.Notice

	login  *loginView
	signup *signupView
	chat   *chatView
}

func NewModel(ctx context.Context, deps Deps) *Model {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		ctx:     ctx,
		deps:    deps,
		log:     log,
		auth:    core.NewAuthenticator(deps.Backend, deps.Session, deps.Bus, log.Named("auth")),
		layout:  update.Layout{Width: 80, Height: 24},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		login:   newLoginView(),
		signup:  newSignupView(),
	}
	m.navigate(session.Guard(deps.Session))
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.focusCurrent(),
		m.deps.Dispatcher.Listen(),
	)
}

// CurrentView is the view being shown.
func (m *Model) CurrentView() models.View { return m.view }

// Alert is the notice waiting to be dismissed, if any.
func (m *Model) Alert() *models.Notice { return m.alert }

func (m *Model) busy() bool {
	switch m.view {
	case models.ViewLogin:
		return m.login.busy
	case models.ViewSignup:
		return m.signup.busy
	case models.ViewChat:
		return m.chat != nil && (m.chat.conv.Pending() || m.chat.account.Deleting())
	}
	return false
}

// navigate switches views and focuses the new view's first input. Entering
// chat runs the session guard first; a fresh conversation is built only when
// it lets the user in.
func (m *Model) navigate(view models.View) tea.Cmd {
	if view == models.ViewChat && session.Guard(m.deps.Session) != models.ViewChat {
		view = models.ViewLogin
	}
	m.log.Debug("navigate", zap.Stringer("from", m.view), zap.Stringer("to", view))

	if view != models.ViewChat {
		m.chat = nil
	}
	switch view {
	case models.ViewLogin:
		m.login.reset()
	case models.ViewSignup:
		m.signup.reset()
		m.login.info = ""
	case models.ViewChat:
		if m.chat == nil {
			m.chat = m.newChat()
		}
		m.login.reset()
		m.login.info = ""
	}
	m.view = view
	return m.focusCurrent()
}

func (m *Model) newChat() *chatView {
	conv := core.NewConversation(m.deps.Backend, m.deps.Session, m.deps.Bus,
		core.WithPersona(m.deps.Persona),
		core.WithConversationLogger(m.log.Named("conversation")),
	)
	account := core.NewAccountController(m.deps.Backend, m.deps.Session, m.deps.Bus, m.log.Named("account"))
	var subject string
	if claims, ok := m.deps.Session.Claims(); ok {
		subject = claims.Subject
	}
	return newChatView(conv, account, subject, m.layout)
}

func (m *Model) focusCurrent() tea.Cmd {
	switch m.view {
	case models.ViewLogin:
		m.signup.form.blur()
		return m.login.form.focusCurrent()
	case models.ViewSignup:
		m.login.form.blur()
		return m.signup.form.focusCurrent()
	case models.ViewChat:
		m.login.form.blur()
		m.signup.form.blur()
		return m.chat.input.Focus()
	}
	return nil
}

func (m *Model) resize() {
	width := m.layout.ContentWidth()
	m.login.form.resize(width)
	m.signup.form.resize(width)
	if m.chat != nil {
		m.chat.resize(m.layout)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		update.HandleWindowSizeMsg(&m.layout, msg)
		m.resize()
		return m, nil

	case update.CoreEventMsg:
		cmd := m.handleCoreEvent(msg)
		return m, tea.Batch(cmd, m.deps.Dispatcher.Listen())

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case update.TurnFinishedMsg:
		m.log.Debug("turn finished", zap.Uint64("message_id", msg.MessageID), zap.Stringer("outcome", msg.Outcome))
		if m.chat != nil {
			m.chat.refresh()
		}
		return m, nil

	case update.LoginFinishedMsg:
		m.login.busy = false
		if msg.Err != nil {
			m.alert = &models.Notice{Title: "Login failed", Message: msg.Err.Error()}
		}
		return m, nil

	case update.SignupFinishedMsg:
		m.signup.busy = false
		if msg.Err != nil {
			m.signup.err = msg.Err.Error()
			return m, nil
		}
		m.login.info = "Account created. Please log in."
		return m, nil

	case update.TerminationFinishedMsg:
		if m.chat != nil {
			m.chat.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, m.forward(msg)
}

func (m *Model) handleCoreEvent(msg update.CoreEventMsg) tea.Cmd {
	switch event := msg.Event.(type) {
	case eventbus.NavigateEvent:
		return m.navigate(event.View)
	case eventbus.NoticeEvent:
		notice := event.Notice
		m.alert = &notice
		if m.chat != nil {
			m.chat.refresh()
		}
	}
	return nil
}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	if key.String() == "ctrl+c" {
		return tea.Quit
	}
	// an alert blocks everything until it is dismissed
	if m.alert != nil {
		switch key.String() {
		case "enter", "esc":
			m.alert = nil
		}
		return nil
	}

	switch m.view {
	case models.ViewLogin:
		return m.handleLoginKey(key)
	case models.ViewSignup:
		return m.handleSignupKey(key)
	case models.ViewChat:
		return m.handleChatKey(key)
	}
	return nil
}

func (m *Model) handleLoginKey(key tea.KeyMsg) tea.Cmd {
	v := m.login
	if v.busy {
		return nil
	}
	switch key.String() {
	case "tab", "down":
		return v.form.next()
	case "shift+tab", "up":
		return v.form.prev()
	case "ctrl+s":
		return m.navigate(models.ViewSignup)
	case "enter":
		v.busy = true
		return tea.Batch(
			update.LoginCmd(m.ctx, m.auth, v.form.value(loginUsername), v.form.value(loginPassword)),
			m.spinner.Tick,
		)
	}
	return v.form.update(key)
}

func (m *Model) handleSignupKey(key tea.KeyMsg) tea.Cmd {
	v := m.signup
	if v.busy {
		return nil
	}
	switch key.String() {
	case "tab", "down":
		return v.form.next()
	case "shift+tab", "up":
		return v.form.prev()
	case "ctrl+l", "esc":
		return m.navigate(models.ViewLogin)
	case "enter":
		form := v.values()
		// validate here so a mistake never shows a spinner
		if err := core.ValidateSignup(form); err != nil {
			v.err = err.Error()
			return nil
		}
		v.err = ""
		v.busy = true
		return tea.Batch(update.SignupCmd(m.ctx, m.auth, form), m.spinner.Tick)
	}
	return v.form.update(key)
}

func (m *Model) handleChatKey(key tea.KeyMsg) tea.Cmd {
	v := m.chat
	if v.account.ConfirmOpen() {
		switch key.String() {
		case "y", "Y":
			term, ok := v.account.BeginTermination()
			if !ok {
				return nil
			}
			return tea.Batch(update.TerminateCmd(m.ctx, term), m.spinner.Tick)
		case "n", "N", "esc":
			v.account.CancelTermination()
		}
		return nil
	}

	switch key.String() {
	case "ctrl+d":
		v.account.RequestTermination()
		return nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(key)
		return cmd
	case "enter":
		turn, ok := v.conv.Begin(v.input.Value())
		if !ok {
			return nil
		}
		v.input.Reset()
		v.refresh()
		return tea.Batch(update.ExchangeCmd(m.ctx, turn), m.spinner.Tick)
	}

	if v.conv.Pending() {
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(key)
	return cmd
}

// forward hands everything else, cursor blinks mostly, to the focused input.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.view {
	case models.ViewLogin:
		cmd = m.login.form.update(msg)
	case models.ViewSignup:
		cmd = m.signup.form.update(msg)
	case models.ViewChat:
		m.chat.input, cmd = m.chat.input.Update(msg)
	}
	return cmd
}

func (m *Model) View() string {
	width := m.layout.ContentWidth()
	activity := ""
	if m.busy() {
		activity = m.spinner.View()
	}

	if m.alert != nil {
		return components.RenderModal(components.Modal{
			Title:  m.alert.Title,
			Body:   m.alert.Message,
			Detail: m.alert.Detail,
			Hint:   "enter to dismiss",
		}, m.layout.Width, m.layout.Height)
	}

	switch m.view {
	case models.ViewSignup:
		return m.signup.view(width, activity)
	case models.ViewChat:
		return m.chat.view(m.layout, components.Status{
			Profile:  m.deps.Profile,
			Persona:  m.chat.conv.Persona(),
			Activity: activity,
		})
	default:
		return m.login.view(width, activity)
	}
}
