package model

import (
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{ Validate() error }
		wantErr bool
	}{
		{"label ok", LabelCreate{Name: "Tools"}, false},
		{"label blank", LabelCreate{Name: "  "}, true},
		{"location ok", LocationCreate{Name: "Garage"}, false},
		{"location blank", LocationCreate{}, true},
		{"item ok", ItemCreate{Name: "Hammer", Quantity: 1}, false},
		{"item blank", ItemCreate{Name: ""}, true},
		{"item negative qty", ItemCreate{Name: "Hammer", Quantity: -1}, true},
		{"update missing id", ItemUpdate{ItemCreate: ItemCreate{Name: "Hammer"}}, true},
		{"update ok", ItemUpdate{ID: "1", ItemCreate: ItemCreate{Name: "Hammer"}}, false},
		{"login ok", LoginRequest{Username: "a@b.c", Password: "x"}, false},
		{"login no user", LoginRequest{Password: "x"}, true},
		{"login no password", LoginRequest{Username: "a"}, true},
		{"register ok", RegisterRequest{Email: "a@b.c", Password: "x"}, false},
		{"register no email", RegisterRequest{Name: "A", Password: "x"}, true},
		{"register no password", RegisterRequest{Email: "a@b.c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWrapsErrRequired(t *testing.T) {
	err := LocationCreate{}.Validate()
	if !errors.Is(err, ErrRequired) {
		t.Errorf("expected ErrRequired, got %v", err)
	}
}

func TestItemQueryKey(t *testing.T) {
	a := ItemQuery{Q: " drill ", Page: 2, PageSize: 8, Labels: []string{"l1"}}
	b := ItemQuery{Q: "drill", Page: 2, PageSize: 8, Labels: []string{"l1"}}
	if a.Key() != b.Key() {
		t.Errorf("whitespace should not change the key: %q vs %q", a.Key(), b.Key())
	}
	c := b
	c.Page = 3
	if c.Key() == b.Key() {
		t.Error("page must be part of the key")
	}
	if !strings.HasPrefix(b.Key(), "items?") {
		t.Errorf("unexpected key prefix: %q", b.Key())
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 8, 1},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{17, 8, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		p := PaginationResult[ItemSummary]{Total: tt.total}
		if got := p.TotalPages(tt.size); got != tt.want {
			t.Errorf("TotalPages(total=%d, size=%d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
	p := PaginationResult[ItemSummary]{Total: 25, PageSize: 10}
	if got := p.TotalPages(0); got != 3 {
		t.Errorf("falls back to PageSize: got %d", got)
	}
}

func TestUserFromLogin(t *testing.T) {
	u := UserFromLogin("alice@example.com")
	if u.Name != "alice" || u.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", u)
	}
	if u := UserFromLogin("bob"); u.Name != "bob" {
		t.Errorf("plain username: %+v", u)
	}
}

func TestInitial(t *testing.T) {
	var nilUser *User
	if nilUser.Initial() != "U" {
		t.Error("nil user should give U")
	}
	if (&User{}).Initial() != "U" {
		t.Error("empty name should give U")
	}
	if (&User{Name: "élise"}).Initial() != "É" {
		t.Errorf("got %q", (&User{Name: "élise"}).Initial())
	}
}

func TestTreeNodeDecode(t *testing.T) {
	raw := `[{"id":"a","name":"Garage","type":"location","children":[
		{"id":"b","name":"Shelf","type":"location","children":[]},
		{"id":"i","name":"Drill","type":"item"}]}]`
	var nodes []TreeNode
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		t.Fatal(err)
	}
	root := &nodes[0]
	if !root.IsLocation() || !root.HasChildren() {
		t.Fatalf("root decoded wrong: %+v", root)
	}
	if root.Children[0].HasChildren() {
		t.Error("empty children array means no children")
	}
	if root.Children[1].Kind != KindItem || root.Children[1].IsLocation() {
		t.Error("item kind not decoded")
	}
	var missing *TreeNode
	if missing.HasChildren() || missing.IsLocation() {
		t.Error("nil node should report false")
	}
}
