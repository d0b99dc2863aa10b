package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

func newLoginCommand(a *app) *cobra.Command {
	var (
		username      string
		passwordStdin bool
		stay          bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long: `Sign in and store the session under the state directory.

Without flags a form asks for the username and password. In scripts pass
--username and pipe the password with --password-stdin.`,
		Example: `  stk login
  echo "$PW" | stk login -u ada@example.com --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := model.LoginRequest{Username: strings.TrimSpace(username), StayLoggedIn: stay}
			if passwordStdin {
				pw, err := readLine(a)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				req.Password = pw
			}
			if req.Username == "" || req.Password == "" {
				if !a.interactive() {
					return fmt.Errorf("username and password are required (use --username and --password-stdin)")
				}
				if err := loginForm(&req); err != nil {
					return err
				}
			}
			if err := req.Validate(); err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			user, err := c.SignIn(cmd.Context(), req, a.session)
			if err != nil {
				return errors.New(api.Message(err, api.InvalidLoginMessage))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(user))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (email)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().BoolVar(&stay, "stay", true, "ask the backend for a long-lived session")
	return cmd
}

func loginForm(req *model.LoginRequest) error {
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&req.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&req.Password).
				Validate(required("password")),
			huh.NewConfirm().
				Title("Stay logged in?").
				Value(&req.StayLoggedIn),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	return nil
}

func newRegisterCommand(a *app) *cobra.Command {
	var (
		req           model.RegisterRequest
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the backend",
		Example: `  stk register
  echo "$PW" | stk register --email ada@example.com --name Ada --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Email = strings.TrimSpace(req.Email)
			req.Name = strings.TrimSpace(req.Name)
			if passwordStdin {
				pw, err := readLine(a)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				req.Password = pw
			}
			if req.Email == "" || req.Password == "" {
				if !a.interactive() {
					return fmt.Errorf("email and password are required (use --email and --password-stdin)")
				}
				if err := registerForm(&req); err != nil {
					return err
				}
			}
			if err := req.Validate(); err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Register(cmd.Context(), req); err != nil {
				return fmt.Errorf("registering %s: %s", req.Email, api.Message(err, "request failed"))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Sign in with: stk login -u %s\n", req.Email, req.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email, used as the username")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func registerForm(req *model.RegisterRequest) error {
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&req.Email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Name").
				Value(&req.Name),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&req.Password).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	return nil
}

func readLine(a *app) (string, error) {
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayName(u model.User) string {
	if u.Name != "" && u.Email != "" && u.Name != u.Email {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.session.IsAuthenticated() {
				c, err := a.client()
				if err != nil {
					return err
				}
				if err := c.Logout(cmd.Context()); err != nil {
					debug.Log("cli: logout: %v", err)
				}
			}
			if err := a.session.Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			var user model.User
			if u := a.session.User(); u != nil {
				user = *u
			}
			if refresh {
				c, err := a.client()
				if err != nil {
					return err
				}
				self, err := c.Self(cmd.Context())
				if err != nil {
					return backendError(err)
				}
				if err := a.session.SetUser(self); err != nil {
					return err
				}
				user = self
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, displayName(user))
			if user.GroupName != "" {
				_, _ = fmt.Fprintf(out, "group:   %s\n", user.GroupName)
			}
			_, _ = fmt.Fprintf(out, "server:  %s\n", a.cfg.Server.URL)
			if exp := a.session.Snapshot().ExpiresAt; !exp.IsZero() {
				_, _ = fmt.Fprintf(out, "expires: %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the user from the backend")
	return cmd
}
