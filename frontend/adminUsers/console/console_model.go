package console

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	adminusers "userdesk/frontend/adminUsers"
)

// Events is the part of the screen the console drives. *adminusers.Screen implements it.
type Events interface {
	Search(text string)
	NextPage()
	PrevPage()
	Retry()
	SubmitCreate(in adminusers.UserInput)
	OpenEdit(id int64)
	SubmitEdit(in adminusers.UserInput)
	RequestDelete(id int64)
	Confirm()
	Cancel()
	ShowDetail(id int64)
	CloseDetail()
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeCreate
	modeEdit
	modeConfirm
)

// DefaultNoticeDuration is how long a notice stays in the status line.
const DefaultNoticeDuration = 2500 * time.Millisecond

// userForm is the three-field name/email/role form used by create and edit.
type userForm struct {
	inputs [3]textinput.Model
	focus  int
}

func newUserForm() userForm {
	var f userForm
	for i, placeholder := range []string{"Name", "Email", "Role (admin, editor, user)"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 120
		ti.Width = 36
		f.inputs[i] = ti
	}
	return f
}

func (f *userForm) values() adminusers.UserInput {
	return adminusers.UserInput{
		Name:  f.inputs[0].Value(),
		Email: f.inputs[1].Value(),
		Role:  adminusers.Role(f.inputs[2].Value()),
	}
}

func (f *userForm) set(in adminusers.UserInput) {
	f.inputs[0].SetValue(in.Name)
	f.inputs[1].SetValue(in.Email)
	f.inputs[2].SetValue(string(in.Role))
}

func (f *userForm) reset() {
	f.set(adminusers.UserInput{})
	f.focusOn(0)
}

func (f *userForm) focusOn(i int) tea.Cmd {
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f *userForm) blur() {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
}

func (f *userForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

type detailPanel struct {
	shown   bool
	loading bool
	id      int64
	user    adminusers.User
	err     string
}

// Model is the bubbletea model of the users screen. It holds only what the renderer told
// it; every user action goes to Events.
type Model struct {
	events    Events
	styles    Styles
	noticeFor time.Duration
	width     int

	mode   mode
	search textinput.Model
	table  table.Model

	loading bool
	listErr string
	items   []adminusers.User
	pager   adminusers.Pager

	create     userForm
	createBusy bool
	createErr  string

	edit       userForm
	editID     int64
	editErrors adminusers.FieldErrors
	editErr    string
	dialog     adminusers.ConfirmDialog

	detail detailPanel

	notice    *adminusers.Notice
	noticeSeq int
}

type ModelOption func(*Model)

func WithNoticeDuration(d time.Duration) ModelOption {
	return func(m *Model) { m.noticeFor = d }
}

func NewModel(events Events, opts ...ModelOption) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 24},
			{Title: "Email", Width: 30},
			{Title: "Role", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	si := textinput.New()
	si.Placeholder = "Search by name or email..."
	si.CharLimit = 100
	si.Width = 40

	m := Model{
		events:    events,
		styles:    DefaultStyles(),
		noticeFor: DefaultNoticeDuration,
		search:    si,
		table:     t,
		loading:   true,
		create:    newUserForm(),
		edit:      newUserForm(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case loadingMsg:
		m.loading = true
		m.listErr = ""
	case listMsg:
		m.loading = false
		m.listErr = ""
		m.items = msg.result.Items
		m.pager = msg.pager
		m.table.SetRows(rowsOf(m.items))
		if m.table.Cursor() >= len(m.items) {
			m.table.SetCursor(max(len(m.items)-1, 0))
		}
	case listErrorMsg:
		m.loading = false
		m.listErr = msg.message

	case detailLoadingMsg:
		m.detail = detailPanel{shown: true, loading: true, id: msg.id}
	case detailMsg:
		m.detail = detailPanel{shown: true, id: msg.user.ID, user: msg.user}
	case detailErrorMsg:
		m.detail = detailPanel{shown: true, id: msg.id, err: msg.message}
	case hideDetailMsg:
		m.detail = detailPanel{}

	case createBusyMsg:
		m.createBusy = msg.busy
	case createErrorsMsg:
		m.createErr = msg.message
	case resetCreateMsg:
		m.create.reset()
		m.create.blur()
		m.createErr = ""
		if m.mode == modeCreate {
			m.mode = modeList
		}

	case editFormMsg:
		if m.mode != modeEdit || m.editID != msg.form.UserID {
			m.edit.set(msg.form.Values)
		}
		m.editID = msg.form.UserID
		m.editErrors = msg.form.Errors
		m.editErr = msg.form.Error
		m.blurList()
		m.mode = modeEdit
		return m, m.edit.focusOn(m.edit.focus)
	case confirmMsg:
		m.dialog = msg.dialog
		m.blurList()
		m.edit.blur()
		m.mode = modeConfirm
	case closeModalMsg:
		m.mode = modeList
		m.dialog = adminusers.ConfirmDialog{}
		m.editErrors, m.editErr = nil, ""
		m.edit.blur()
		m.table.Focus()

	case noticeMsg:
		n := msg.notice
		m.notice = &n
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Tick(m.noticeFor, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeSearch:
		switch key {
		case "enter", "esc":
			m.mode = modeList
			m.search.Blur()
			m.table.Focus()
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != before {
			m.events.Search(v)
		}
		return m, cmd

	case modeCreate:
		switch key {
		case "esc":
			m.mode = modeList
			m.create.blur()
			m.table.Focus()
			return m, nil
		case "tab", "down":
			return m, m.create.focusOn(m.create.focus + 1)
		case "shift+tab", "up":
			return m, m.create.focusOn(m.create.focus - 1)
		case "enter":
			if !m.createBusy {
				m.events.SubmitCreate(m.create.values())
			}
			return m, nil
		}
		return m, m.create.update(msg)

	case modeEdit:
		switch key {
		case "esc":
			m.events.Cancel()
			return m, nil
		case "tab", "down":
			return m, m.edit.focusOn(m.edit.focus + 1)
		case "shift+tab", "up":
			return m, m.edit.focusOn(m.edit.focus - 1)
		case "enter":
			m.events.SubmitEdit(m.edit.values())
			return m, nil
		}
		return m, m.edit.update(msg)

	case modeConfirm:
		if m.dialog.Busy {
			return m, nil
		}
		switch key {
		case "y", "enter":
			m.events.Confirm()
		case "n", "esc":
			m.events.Cancel()
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeSearch
		m.blurList()
		return m, m.search.Focus()
	case "c":
		m.mode = modeCreate
		m.blurList()
		return m, m.create.focusOn(0)
	case "n", "right", "pgdown":
		m.events.NextPage()
		return m, nil
	case "p", "left", "pgup":
		m.events.PrevPage()
		return m, nil
	case "r":
		m.events.Retry()
		return m, nil
	case "esc":
		if m.detail.shown {
			m.events.CloseDetail()
		}
		return m, nil
	case "enter":
		if u, ok := m.selected(); ok {
			m.events.ShowDetail(u.ID)
		}
		return m, nil
	case "e":
		if u, ok := m.selected(); ok {
			m.events.OpenEdit(u.ID)
		}
		return m, nil
	case "d", "x":
		if u, ok := m.selected(); ok {
			m.events.RequestDelete(u.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) blurList() {
	m.table.Blur()
	m.search.Blur()
}

func (m Model) selected() (adminusers.User, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return adminusers.User{}, false
	}
	return m.items[i], true
}

func rowsOf(users []adminusers.User) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{strconv.FormatInt(u.ID, 10), u.Name, u.Email, string(u.Role)})
	}
	return rows
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("Users"))
	sb.WriteString("\n")
	searchStyle := m.styles.Input
	if m.mode == modeSearch {
		searchStyle = m.styles.Focused
	}
	sb.WriteString(searchStyle.Render(m.search.View()))
	sb.WriteString("\n")

	main := m.listView()
	if m.detail.shown {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", m.detailView())
	}
	sb.WriteString(main)
	sb.WriteString("\n")

	switch m.mode {
	case modeCreate:
		sb.WriteString(m.createView())
		sb.WriteString("\n")
	case modeEdit:
		sb.WriteString(m.editView())
		sb.WriteString("\n")
	case modeConfirm:
		sb.WriteString(m.confirmView())
		sb.WriteString("\n")
	}

	if m.notice != nil {
		style := m.styles.Success
		if m.notice.Kind == adminusers.NoticeError {
			style = m.styles.Error
		}
		sb.WriteString(style.Render(m.notice.Text))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Muted.Render(m.helpLine()))
	return sb.String()
}

func (m Model) listView() string {
	switch {
	case m.listErr != "":
		return m.styles.Error.Render("Could not load users.\n"+m.listErr) + "\n" + m.styles.Muted.Render("press r to try again")
	case m.loading:
		return m.styles.Muted.Render("Loading users…")
	case len(m.items) == 0:
		return m.styles.Muted.Render("No users found.")
	}

	prev, next := "‹", "›"
	if !m.pager.HasPrev {
		prev = m.styles.Disabled.Render(prev)
	}
	if !m.pager.HasNext {
		next = m.styles.Disabled.Render(next)
	}
	pager := fmt.Sprintf("%s Page %d of %d %s  %s", prev, m.pager.Page, m.pager.PageCount, next,
		m.styles.Muted.Render(fmt.Sprintf("%d users", m.pager.Total)))
	return m.table.View() + "\n" + pager
}

func (m Model) detailView() string {
	var body string
	switch {
	case m.detail.loading:
		body = fmt.Sprintf("Loading user #%d…", m.detail.id)
	case m.detail.err != "":
		body = m.styles.Error.Render(m.detail.err)
	default:
		u := m.detail.user
		body = fmt.Sprintf("Name:    %s\nEmail:   %s\nRole:    %s\nCreated: %s", u.Name, u.Email, u.Role, u.CreatedAt)
	}
	return m.styles.Panel.Render("Details\n\n" + body + "\n\n" + m.styles.Muted.Render("esc to close"))
}

func (m Model) createView() string {
	var sb strings.Builder
	sb.WriteString("Create user\n")
	for _, in := range m.create.inputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	if m.createBusy {
		sb.WriteString(m.styles.Muted.Render("Saving…") + "\n")
	}
	if m.createErr != "" {
		sb.WriteString(m.styles.Error.Render(m.createErr) + "\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) editView() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Edit user #%d\n", m.editID)
	for i, in := range m.edit.inputs {
		sb.WriteString(in.View())
		if msg := m.editErrors[[]string{"name", "email", "role"}[i]]; msg != "" {
			sb.WriteString("  " + m.styles.Error.Render(msg))
		}
		sb.WriteString("\n")
	}
	if m.editErr != "" {
		sb.WriteString(m.styles.Error.Render(m.editErr) + "\n")
	}
	return m.styles.Modal.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) confirmView() string {
	body := m.dialog.Prompt + "\n\n"
	if m.dialog.Error != "" {
		body += m.styles.Error.Render(m.dialog.Error) + "\n\n"
	}
	if m.dialog.Busy {
		body += m.styles.Muted.Render("Working…")
	} else {
		body += "[y] confirm   [n] cancel"
	}
	return m.styles.Modal.Render(body)
}

func (m Model) helpLine() string {
	switch m.mode {
	case modeSearch:
		return "type to search • enter/esc done"
	case modeCreate:
		return "tab next field • enter create • esc close"
	case modeEdit:
		return "tab next field • enter save • esc cancel"
	case modeConfirm:
		return "y confirm • n cancel"
	}
	return "/ search • c create • e edit • d delete • enter details • n/p page • r reload • q quit"
}
