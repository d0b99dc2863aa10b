package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/config"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/query"
	"github.com/vanderheijden86/stockpile/pkg/ui"
	"github.com/vanderheijden86/stockpile/pkg/watcher"
)

// runDashboard opens the full-screen dashboard.
func runDashboard(cmd *cobra.Command, a *app) error {
	if debug.Enabled() {
		closeLog, err := redirectDebugLog()
		if err != nil {
			return err
		}
		defer closeLog()
	}

	// p is set before the program starts; the hook only fires from
	// commands the program runs.
	var p *tea.Program
	client, err := a.client(api.WithUnauthorizedHook(func() {
		if p != nil {
			p.Send(ui.UnauthorizedMsg{})
		}
	}))
	if err != nil {
		return err
	}

	w, err := watcher.NewWatcher(a.session.Path(), watcher.WithDebounceDuration(200*time.Millisecond))
	if err == nil {
		if err := w.Start(); err != nil {
			debug.Log("cli: session watcher: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	} else {
		w = nil
	}

	m := ui.NewModel(ui.Options{
		Context: cmd.Context(),
		Backend: client,
		Session: a.session,
		Config:  a.cfg,
		Queries: query.NewStore(),
		Watcher: w,
	})

	p = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)
	if err := runProgram(p); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// redirectDebugLog sends debug output to a file while the dashboard owns
// the terminal.
func redirectDebugLog() (func(), error) {
	dir := config.StateDir()
	if dir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening debug log: %w", err)
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func runProgram(p *tea.Program) error {
	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: set STK_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("STK_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
