package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/market"
	"github.com/five82/booth/internal/state"
)

// SessionActions is the session controller surface the UI dispatches to.
type SessionActions interface {
	Login(ctx context.Context, creds market.Credentials) error
	Signup(ctx context.Context, req market.SignupRequest) error
	Logout() error
}

// StudioActions is the studio controller surface the UI dispatches to.
type StudioActions interface {
	List(ctx context.Context, filters market.StudioFilters) error
	Get(ctx context.Context, id string) error
	Create(ctx context.Context, input market.StudioInput) (market.Studio, error)
	Update(ctx context.Context, id string, input market.StudioInput) (market.Studio, error)
	Delete(ctx context.Context, id string) error
	ClearCurrent()
	ClearError()
}

// ImageUploader turns a local image file into a hosted URL.
type ImageUploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

type op int

const (
	opLogin op = iota
	opSignup
	opLogout
	opList
	opGet
	opCreate
	opUpdate
	opDelete
)

func (o op) String() string {
	switch o {
	case opLogin:
		return "login"
	case opSignup:
		return "signup"
	case opLogout:
		return "logout"
	case opList:
		return "list"
	case opGet:
		return "get"
	case opCreate:
		return "create"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// opDoneMsg reports a settled controller call.
type opDoneMsg struct {
	op     op
	id     string
	studio market.Studio
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) loginCmd(creds market.Credentials) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return opDoneMsg{op: opLogin, err: session.Login(ctx, creds)}
	}
}

func (m Model) signupCmd(req market.SignupRequest) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return opDoneMsg{op: opSignup, err: session.Signup(ctx, req)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return opDoneMsg{op: opLogout, err: session.Logout()}
	}
}

func (m Model) listCmd() tea.Cmd {
	ctx, studios, filters := m.ctx, m.studios, m.prefs.Filters
	return func() tea.Msg {
		return opDoneMsg{op: opList, err: studios.List(ctx, filters)}
	}
}

func (m Model) getCmd(id string) tea.Cmd {
	ctx, studios := m.ctx, m.studios
	return func() tea.Msg {
		return opDoneMsg{op: opGet, id: id, err: studios.Get(ctx, id)}
	}
}

func (m Model) createCmd(input market.StudioInput) tea.Cmd {
	ctx, studios, uploader := m.ctx, m.studios, m.uploader
	return func() tea.Msg {
		if err := resolveImage(ctx, uploader, &input); err != nil {
			return opDoneMsg{op: opCreate, err: err}
		}
		item, err := studios.Create(ctx, input)
		return opDoneMsg{op: opCreate, id: item.ID, studio: item, err: err}
	}
}

func (m Model) updateCmd(id string, input market.StudioInput) tea.Cmd {
	ctx, studios, uploader := m.ctx, m.studios, m.uploader
	return func() tea.Msg {
		if err := resolveImage(ctx, uploader, &input); err != nil {
			return opDoneMsg{op: opUpdate, id: id, err: err}
		}
		item, err := studios.Update(ctx, id, input)
		return opDoneMsg{op: opUpdate, id: id, studio: item, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx, studios := m.ctx, m.studios
	return func() tea.Msg {
		return opDoneMsg{op: opDelete, id: id, err: studios.Delete(ctx, id)}
	}
}

// resolveImage uploads a local image path and replaces it with the hosted
// URL. URLs and blank values pass through. Upload problems are reported on
// the image field.
func resolveImage(ctx context.Context, uploader ImageUploader, input *market.StudioInput) error {
	path := strings.TrimSpace(input.Image)
	if path == "" || isRemoteURL(path) {
		return nil
	}
	if uploader == nil {
		return imageError("image upload is not configured")
	}
	url, err := uploader.Upload(ctx, path)
	if err != nil {
		return imageError(err.Error())
	}
	input.Image = url
	return nil
}

func isRemoteURL(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func imageError(msg string) error {
	return &apiclient.ValidationError{
		Message: "invalid input",
		Fields:  map[string]string{fieldImage: msg},
	}
}
