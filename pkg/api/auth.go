package api

import (
	"context"

	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

// InvalidLoginMessage is shown when a login fails without a server message.
const InvalidLoginMessage = "Invalid username or password"

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	const op = "POST /v1/users/login"
	var tok model.TokenResponse
	if err := req.Validate(); err != nil {
		return tok, invalid(op, err)
	}
	err := c.do(ctx, call{op: op, method: "POST", path: "/v1/users/login", body: req, out: &tok, anon: true})
	return tok, err
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) error {
	const op = "POST /v1/users/register"
	if err := req.Validate(); err != nil {
		return invalid(op, err)
	}
	return c.do(ctx, call{op: op, method: "POST", path: "/v1/users/register", body: req, anon: true})
}

// Self returns the user the current token belongs to.
func (c *Client) Self(ctx context.Context) (model.User, error) {
	return c.self(ctx, false)
}

func (c *Client) self(ctx context.Context, keepSession bool) (model.User, error) {
	var resp struct {
		Item model.User `json:"item"`
	}
	err := c.do(ctx, call{op: "GET /v1/users/self", method: "GET", path: "/v1/users/self", out: &resp, keepSession: keepSession})
	return resp.Item, err
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{op: "POST /v1/users/logout", method: "POST", path: "/v1/users/logout"})
}

// SessionWriter is the part of the session store SignIn needs.
type SessionWriter interface {
	SetAuth(tok model.TokenResponse, user model.User) error
	SetUser(user model.User) error
}

// SignIn logs in, stores the session, and resolves the user. When the
// backend cannot describe the user, one derived from the username is kept.
// A 401 from the user lookup does not undo the fresh session.
func (c *Client) SignIn(ctx context.Context, req model.LoginRequest, store SessionWriter) (model.User, error) {
	tok, err := c.Login(ctx, req)
	if err != nil {
		return model.User{}, err
	}
	user := model.UserFromLogin(req.Username)
	if err := store.SetAuth(tok, user); err != nil {
		return model.User{}, err
	}

	self, err := c.self(ctx, true)
	if err != nil || self.ID == "" {
		debug.Log("api: /users/self unavailable, using login name: %v", err)
		return user, nil
	}
	if err := store.SetUser(self); err != nil {
		return user, err
	}
	return self, nil
}
