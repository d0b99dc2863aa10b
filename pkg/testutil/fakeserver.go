package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

// SeedLocation is a location plus the id of its parent ("" for a root).
type SeedLocation struct {
	model.Location
	ParentID string
}

// Inventory is a complete backend state used to seed a FakeServer.
type Inventory struct {
	Locations []SeedLocation
	Items     []model.Item
	Labels    []model.Label
}

// Request is one request observed by a FakeServer.
type Request struct {
	Route     string // e.g. "GET /v1/items/{id}"
	Path      string
	Query     string
	RequestID string
	Auth      string
}

type account struct {
	password string
	user     model.User
}

// FakeServer is an in-memory inventory backend for tests. Its base URL for
// api.NewClient is URL().
type FakeServer struct {
	srv *httptest.Server

	mu        sync.Mutex
	accounts  map[string]account
	tokens    map[string]string // token -> username
	locations []SeedLocation
	items     []model.Item
	labels    []model.Label
	nextID    int
	failures  map[string][]int
	delays    map[string]time.Duration
	requests  []Request
	noSelf    bool
	now       func() time.Time
}

// NewFakeServer starts a server; it is closed when the test ends.
func NewFakeServer(t testing.TB) *FakeServer {
	t.Helper()
	s := &FakeServer{
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
		failures: make(map[string][]int),
		delays:   make(map[string]time.Duration),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base, e.g. http://127.0.0.1:port/api.
func (s *FakeServer) URL() string {
	return s.srv.URL + "/api"
}

// Client returns an http.Client wired to the server.
func (s *FakeServer) Client() *http.Client {
	return s.srv.Client()
}

// ── seeding ──

// AddUser registers an account and returns its user record.
func (s *FakeServer) AddUser(username, password, name string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: s.id("user"), Name: name, Email: username, GroupID: "g1", GroupName: "Home"}
	s.accounts[username] = account{password: password, user: u}
	return u
}

// IssueToken returns a valid token for username without a login request.
func (s *FakeServer) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := s.id("token")
	s.tokens[tok] = username
	return tok
}

// ExpireTokens revokes every issued token.
func (s *FakeServer) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// DisableSelf makes /v1/users/self answer 404.
func (s *FakeServer) DisableSelf() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noSelf = true
}

// AddLocation creates a location under parentID ("" for a root).
func (s *FakeServer) AddLocation(name, parentID string) model.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := model.Location{ID: s.id("loc"), Name: name, CreatedAt: s.now(), UpdatedAt: s.now()}
	s.locations = append(s.locations, SeedLocation{Location: loc, ParentID: parentID})
	return loc
}

// AddItem creates an item in locationID.
func (s *FakeServer) AddItem(name, locationID string, quantity int, price float64, labelIDs ...string) model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := model.Item{
		ID: s.id("item"), Name: name, Quantity: quantity, PurchasePrice: price,
		CreatedAt: s.now(), UpdatedAt: s.now(), Labels: []model.Label{},
	}
	if loc := s.location(locationID); loc != nil {
		item.Location = &model.Location{ID: loc.ID, Name: loc.Name}
	}
	for _, id := range labelIDs {
		if l := s.label(id); l != nil {
			item.Labels = append(item.Labels, *l)
		}
	}
	s.items = append(s.items, item)
	return item
}

// AddLabel creates a label.
func (s *FakeServer) AddLabel(name string) model.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := model.Label{ID: s.id("label"), Name: name, CreatedAt: s.now(), UpdatedAt: s.now()}
	s.labels = append(s.labels, l)
	return l
}

// Seed replaces the inventory.
func (s *FakeServer) Seed(inv Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append([]SeedLocation(nil), inv.Locations...)
	s.items = append([]model.Item(nil), inv.Items...)
	s.labels = append([]model.Label(nil), inv.Labels...)
}

// FailNext makes the next request to route answer status instead.
// Calls queue up.
func (s *FakeServer) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], status)
}

// Delay holds every request to route for d before answering.
func (s *FakeServer) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Requests returns the requests seen so far.
func (s *FakeServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit route.
func (s *FakeServer) Count(route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Route == route {
			n++
		}
	}
	return n
}

// Items returns a snapshot of the stored items.
func (s *FakeServer) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Locations returns a snapshot of the stored locations.
func (s *FakeServer) Locations() []SeedLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SeedLocation(nil), s.locations...)
}

// ── routing ──

func (s *FakeServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		s.handle(r, "POST", "/users/login", true, s.login)
		s.handle(r, "POST", "/users/register", true, s.register)
		s.handle(r, "GET", "/users/self", false, s.self)
		s.handle(r, "POST", "/users/logout", false, s.logout)

		s.handle(r, "GET", "/items", false, s.listItems)
		s.handle(r, "POST", "/items", false, s.createItem)
		s.handle(r, "GET", "/items/{id}", false, s.getItem)
		s.handle(r, "PUT", "/items/{id}", false, s.updateItem)
		s.handle(r, "DELETE", "/items/{id}", false, s.deleteItem)

		s.handle(r, "GET", "/locations", false, s.listLocations)
		s.handle(r, "GET", "/locations/tree", false, s.tree)
		s.handle(r, "POST", "/locations", false, s.createLocation)
		s.handle(r, "GET", "/locations/{id}", false, s.getLocation)
		s.handle(r, "PUT", "/locations/{id}", false, s.updateLocation)
		s.handle(r, "DELETE", "/locations/{id}", false, s.deleteLocation)

		s.handle(r, "GET", "/labels", false, s.listLabels)
		s.handle(r, "POST", "/labels", false, s.createLabel)
		s.handle(r, "GET", "/labels/{id}", false, s.getLabel)
		s.handle(r, "PUT", "/labels/{id}", false, s.updateLabel)
		s.handle(r, "DELETE", "/labels/{id}", false, s.deleteLabel)
	})
	return r
}

func (s *FakeServer) handle(r chi.Router, method, pattern string, anon bool, h http.HandlerFunc) {
	route := method + " /v1" + pattern
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:     route,
			Path:      req.URL.Path,
			Query:     req.URL.RawQuery,
			RequestID: req.Header.Get("X-Request-ID"),
			Auth:      req.Header.Get("Authorization"),
		})
		delay := s.delays[route]
		var status int
		if q := s.failures[route]; len(q) > 0 {
			status, s.failures[route] = q[0], q[1:]
		}
		authorized := anon || s.tokens[strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")] != ""
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return
			}
		}
		if status != 0 {
			writeError(w, status, fmt.Sprintf("injected %d", status))
			return
		}
		if !authorized {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// id returns a fresh id. Caller holds mu.
func (s *FakeServer) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *FakeServer) location(id string) *SeedLocation {
	for i := range s.locations {
		if s.locations[i].ID == id {
			return &s.locations[i]
		}
	}
	return nil
}

func (s *FakeServer) label(id string) *model.Label {
	for i := range s.labels {
		if s.labels[i].ID == id {
			return &s.labels[i]
		}
	}
	return nil
}

func (s *FakeServer) item(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func summary(l model.Location) model.LocationSummary {
	return model.LocationSummary{ID: l.ID, Name: l.Name, Description: l.Description, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

// ── users ──

func (s *FakeServer) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	if !ok || acct.password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "")
		return
	}
	tok := s.id("token")
	s.tokens[tok] = req.Username
	expires := s.now().Add(time.Hour)
	if req.StayLoggedIn {
		expires = s.now().Add(28 * 24 * time.Hour)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.TokenResponse{Token: tok, AttachmentToken: "att-" + tok, ExpiresAt: expires})
}

func (s *FakeServer) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := readJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	s.AddUser(req.Email, req.Password, req.Name)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *FakeServer) self(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	username := s.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	acct := s.accounts[username]
	noSelf := s.noSelf
	s.mu.Unlock()
	if noSelf {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.User{"item": acct.user})
}

func (s *FakeServer) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	s.mu.Unlock()
	writeJSON(w, http.StatusNoContent, nil)
}

// ── items ──

func (s *FakeServer) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	needle := strings.ToLower(strings.TrimSpace(q.Get("q")))
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("pageSize"))
	if size < 1 {
		size = 10
	}
	want := func(ids []string, has func(string) bool) bool {
		if len(ids) == 0 {
			return true
		}
		for _, id := range ids {
			if has(id) {
				return true
			}
		}
		return false
	}

	s.mu.Lock()
	var matched []model.ItemSummary
	for _, it := range s.items {
		if needle != "" && !strings.Contains(strings.ToLower(it.Name+" "+it.Description), needle) {
			continue
		}
		if !want(q["locations"], func(id string) bool { return it.Location != nil && it.Location.ID == id }) {
			continue
		}
		if !want(q["labels"], func(id string) bool {
			for _, l := range it.Labels {
				if l.ID == id {
					return true
				}
			}
			return false
		}) {
			continue
		}
		matched = append(matched, itemSummary(it))
	}
	s.mu.Unlock()

	res := model.PaginationResult[model.ItemSummary]{Items: []model.ItemSummary{}, Page: page, PageSize: size, Total: len(matched)}
	if start := (page - 1) * size; start < len(matched) {
		end := start + size
		if end > len(matched) {
			end = len(matched)
		}
		res.Items = matched[start:end]
	}
	writeJSON(w, http.StatusOK, res)
}

func itemSummary(it model.Item) model.ItemSummary {
	out := model.ItemSummary{
		ID: it.ID, Name: it.Name, Description: it.Description, Quantity: it.Quantity,
		AssetID: it.AssetID, PurchasePrice: it.PurchasePrice, Labels: it.Labels,
		Archived: it.Archived, Insured: it.Insured, CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt,
	}
	if it.Location != nil {
		l := summary(*it.Location)
		out.Location = &l
	}
	return out
}

func (s *FakeServer) getItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.item(chi.URLParam(r, "id"))
	var it model.Item
	if i >= 0 {
		it = s.items[i]
	}
	s.mu.Unlock()
	if i < 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *FakeServer) createItem(w http.ResponseWriter, r *http.Request) {
	var in model.ItemCreate
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	it := s.AddItem(in.Name, in.LocationID, in.Quantity, 0, in.LabelIDs...)
	s.mu.Lock()
	s.items[s.item(it.ID)].Description = in.Description
	it = s.items[s.item(it.ID)]
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, itemSummary(it))
}

func (s *FakeServer) updateItem(w http.ResponseWriter, r *http.Request) {
	var in model.ItemUpdate
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	i := s.item(chi.URLParam(r, "id"))
	if i < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	it := &s.items[i]
	it.Name, it.Description, it.Quantity, it.Notes = in.Name, in.Description, in.Quantity, in.Notes
	it.PurchasePrice, it.Manufacturer, it.ModelNumber, it.SerialNumber = in.PurchasePrice, in.Manufacturer, in.ModelNumber, in.SerialNumber
	if loc := s.location(in.LocationID); loc != nil {
		it.Location = &model.Location{ID: loc.ID, Name: loc.Name}
	}
	it.UpdatedAt = s.now()
	out := *it
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) deleteItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.item(chi.URLParam(r, "id"))
	if i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.mu.Unlock()
	if i < 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ── locations ──

func (s *FakeServer) listLocations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, l.Location)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) tree(w http.ResponseWriter, r *http.Request) {
	withItems := r.URL.Query().Get("withItems") == "true"
	s.mu.Lock()
	var build func(parent string) []model.TreeNode
	build = func(parent string) []model.TreeNode {
		nodes := []model.TreeNode{}
		for _, l := range s.locations {
			if l.ParentID != parent {
				continue
			}
			n := model.TreeNode{ID: l.ID, Name: l.Name, Kind: model.KindLocation, Children: build(l.ID)}
			if withItems {
				for _, it := range s.items {
					if it.Location != nil && it.Location.ID == l.ID {
						n.Children = append(n.Children, model.TreeNode{ID: it.ID, Name: it.Name, Kind: model.KindItem})
					}
				}
			}
			nodes = append(nodes, n)
		}
		return nodes
	}
	out := build("")
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) getLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	loc := s.location(id)
	if loc == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	out := loc.Location
	if p := s.location(loc.ParentID); p != nil {
		ps := summary(p.Location)
		out.Parent = &ps
	}
	for _, l := range s.locations {
		if l.ParentID == id {
			out.Children = append(out.Children, summary(l.Location))
		}
	}
	sort.SliceStable(out.Children, func(i, j int) bool { return out.Children[i].Name < out.Children[j].Name })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) createLocation(w http.ResponseWriter, r *http.Request) {
	var in model.LocationCreate
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	parent := ""
	if in.ParentID != nil {
		parent = *in.ParentID
	}
	loc := s.AddLocation(in.Name, parent)
	s.mu.Lock()
	s.location(loc.ID).Description = in.Description
	out := summary(s.location(loc.ID).Location)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (s *FakeServer) updateLocation(w http.ResponseWriter, r *http.Request) {
	var in model.LocationCreate
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	loc := s.location(chi.URLParam(r, "id"))
	if loc == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	loc.Name, loc.Description, loc.UpdatedAt = in.Name, in.Description, s.now()
	if in.ParentID != nil {
		loc.ParentID = *in.ParentID
	} else {
		loc.ParentID = ""
	}
	out := loc.Location
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) deleteLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	found := false
	kept := s.locations[:0]
	for _, l := range s.locations {
		if l.ID == id {
			found = true
			continue
		}
		if l.ParentID == id {
			l.ParentID = ""
		}
		kept = append(kept, l)
	}
	s.locations = kept
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ── labels ──

func (s *FakeServer) listLabels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]model.Label{}, s.labels...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) getLabel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	l := s.label(chi.URLParam(r, "id"))
	var out model.Label
	if l != nil {
		out = *l
	}
	s.mu.Unlock()
	if l == nil {
		writeError(w, http.StatusNotFound, "label not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) createLabel(w http.ResponseWriter, r *http.Request) {
	var in model.LabelCreate
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	l := s.AddLabel(in.Name)
	s.mu.Lock()
	lp := s.label(l.ID)
	lp.Description, lp.Color = in.Description, in.Color
	out := *lp
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (s *FakeServer) updateLabel(w http.ResponseWriter, r *http.Request) {
	var in model.LabelCreate
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	l := s.label(chi.URLParam(r, "id"))
	if l == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "label not found")
		return
	}
	l.Name, l.Description, l.Color, l.UpdatedAt = in.Name, in.Description, in.Color, s.now()
	out := *l
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *FakeServer) deleteLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	found := false
	kept := s.labels[:0]
	for _, l := range s.labels {
		if l.ID == id {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	s.labels = kept
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "label not found")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
