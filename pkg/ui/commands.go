package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/model"
	"github.com/vanderheijden86/stockpile/pkg/query"
	"github.com/vanderheijden86/stockpile/pkg/watcher"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API client the dashboard uses.
type Backend interface {
	SignIn(ctx context.Context, req model.LoginRequest, store api.SessionWriter) (model.User, error)
	Logout(ctx context.Context) error

	GetLocationsTree(ctx context.Context, withItems bool) ([]model.TreeNode, error)
	GetLocation(ctx context.Context, id string) (model.Location, error)
	CreateLocation(ctx context.Context, in model.LocationCreate) (model.LocationSummary, error)
	UpdateLocation(ctx context.Context, id string, in model.LocationCreate) (model.Location, error)
	DeleteLocation(ctx context.Context, id string) error

	GetItems(ctx context.Context, q model.ItemQuery) (model.PaginationResult[model.ItemSummary], error)
	AllItems(ctx context.Context, q model.ItemQuery) ([]model.ItemSummary, error)
	GetItem(ctx context.Context, id string) (model.Item, error)
	CreateItem(ctx context.Context, in model.ItemCreate) (model.ItemSummary, error)
	DeleteItem(ctx context.Context, id string) error

	GetLabels(ctx context.Context) ([]model.Label, error)
	CreateLabel(ctx context.Context, in model.LabelCreate) (model.Label, error)
	DeleteLabel(ctx context.Context, id string) error
}

var _ Backend = (*api.Client)(nil)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// treeLoadedMsg carries the result of a locations tree fetch.
type treeLoadedMsg struct {
	ticket query.Ticket
	nodes  []model.TreeNode
	err    error
}

// locationDetailMsg carries one location and the items stored in it.
type locationDetailMsg struct {
	id          string
	locTicket   query.Ticket
	itemsTicket query.Ticket
	location    model.Location
	items       []model.ItemSummary
	err         error
}

// itemsPageMsg carries one page of the inventory listing.
type itemsPageMsg struct {
	ticket query.Ticket
	page   model.PaginationResult[model.ItemSummary]
	err    error
}

// itemLoadedMsg carries a full item record.
type itemLoadedMsg struct {
	ticket query.Ticket
	item   model.Item
	err    error
}

// labelsLoadedMsg carries the label list.
type labelsLoadedMsg struct {
	labels    []model.Label
	committed bool
	err       error
}

// mutationDoneMsg reports a finished create, update or delete. On success
// the listed query prefixes are invalidated and refetched.
type mutationDoneMsg struct {
	status     string
	invalidate []string
	selectID   string // location to select after a tree refresh
	leave      bool   // go back to the previous page on success
	err        error
}

// loginResultMsg reports the outcome of a login attempt.
type loginResultMsg struct {
	user model.User
	err  error
}

// logoutDoneMsg is sent once the session has been cleared.
type logoutDoneMsg struct{}

// openItemMsg asks the model to show an item's detail page.
type openItemMsg struct {
	id   string
	from page
}

// UnauthorizedMsg is sent when the backend rejected the session. The
// program switches to the login page.
type UnauthorizedMsg struct{}

// SessionChangedMsg is sent when the session file changed on disk, for
// example after `stk login` or `stk logout` in another terminal.
type SessionChangedMsg struct{}

// clearStatusMsg clears a status line set at the given time.
type clearStatusMsg struct{ at time.Time }

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// fetchTreeCmd loads the locations tree under ticket t.
func fetchTreeCmd(ctx context.Context, b Backend, t query.Ticket, withItems bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		nodes, err := b.GetLocationsTree(ctx, withItems)
		debug.LogTiming("ui: fetch tree", time.Since(start))
		return treeLoadedMsg{ticket: t, nodes: nodes, err: err}
	}
}

// fetchLocationDetailCmd loads a location and its items concurrently.
func fetchLocationDetailCmd(ctx context.Context, b Backend, id string, lt, it query.Ticket) tea.Cmd {
	return func() tea.Msg {
		msg := locationDetailMsg{id: id, locTicket: lt, itemsTicket: it}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			loc, err := b.GetLocation(gctx, id)
			if err != nil {
				return fmt.Errorf("location %s: %w", id, err)
			}
			msg.location = loc
			return nil
		})
		g.Go(func() error {
			items, err := b.AllItems(gctx, model.ItemQuery{Locations: []string{id}})
			if err != nil {
				return fmt.Errorf("items in %s: %w", id, err)
			}
			msg.items = items
			return nil
		})
		msg.err = g.Wait()
		return msg
	}
}

// fetchItemsCmd loads one page of the inventory listing.
func fetchItemsCmd(ctx context.Context, b Backend, t query.Ticket, q model.ItemQuery) tea.Cmd {
	return func() tea.Msg {
		page, err := b.GetItems(ctx, q)
		return itemsPageMsg{ticket: t, page: page, err: err}
	}
}

// fetchItemCmd loads one item.
func fetchItemCmd(ctx context.Context, b Backend, t query.Ticket, id string) tea.Cmd {
	return func() tea.Msg {
		item, err := b.GetItem(ctx, id)
		return itemLoadedMsg{ticket: t, item: item, err: err}
	}
}

// fetchLabelsCmd loads labels. Concurrent requests share one round trip.
func fetchLabelsCmd(ctx context.Context, b Backend, qs *query.Store) tea.Cmd {
	return func() tea.Msg {
		v, committed, err := qs.Do(ctx, query.KeyLabels, func(ctx context.Context) (any, error) {
			return b.GetLabels(ctx)
		})
		labels, _ := v.([]model.Label)
		return labelsLoadedMsg{labels: labels, committed: committed, err: err}
	}
}

// mutate runs fn and reports it as a mutationDoneMsg.
func mutate(status string, invalidate []string, fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		selectID, err := fn()
		if err != nil {
			debug.Log("ui: %s failed: %v", status, err)
		}
		return mutationDoneMsg{status: status, invalidate: invalidate, selectID: selectID, err: err}
	}
}

// loginCmd signs in and stores the session.
func loginCmd(ctx context.Context, b Backend, w api.SessionWriter, req model.LoginRequest) tea.Cmd {
	return func() tea.Msg {
		user, err := b.SignIn(ctx, req, w)
		return loginResultMsg{user: user, err: err}
	}
}

// sessionClearer is satisfied by *session.Store.
type sessionClearer interface {
	Clear() error
}

// logoutCmd tells the backend, best effort, then drops the local session.
func logoutCmd(ctx context.Context, b Backend, s sessionClearer) tea.Cmd {
	return func() tea.Msg {
		if err := b.Logout(ctx); err != nil {
			debug.Log("ui: logout: %v", err)
		}
		if err := s.Clear(); err != nil {
			debug.Log("ui: clear session: %v", err)
		}
		return logoutDoneMsg{}
	}
}

// WatchSessionCmd waits for the session file to change.
func WatchSessionCmd(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changed()
		return SessionChangedMsg{}
	}
}

// clearStatusAfter clears a status line set at at after d.
func clearStatusAfter(at time.Time, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{at: at}
	})
}
