package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/bottle-sort/internal/core"
	"github.com/vovakirdan/bottle-sort/internal/registry"
	"github.com/vovakirdan/bottle-sort/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.bottlesort/host_key.
	HostKeyPath string

	// DBPath is the path to the results database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Play holds the pour settings applied to every session.
	Play core.RuntimeConfig

	// Logger receives server and session logs. Defaults to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.bottlesort/results.db",
		IdleTimeout: 30 * time.Minute,
		Play:        core.DefaultConfig(),
	}
}

// SSHServer serves bottle-sort sessions over SSH.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "bottlesort-ssh",
		})
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open results database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".bottlesort", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := s.config.Play
	cfg.ScreenW = pty.Window.Width
	cfg.ScreenH = pty.Window.Height
	cfg.Player = sshSession.User()

	model := NewSessionModel(SessionOptions{
		Store:  s.store,
		Config: cfg,
		Logger: s.logger.With("user", cfg.Player),
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionOptions configures a play session.
type SessionOptions struct {
	Store  *storage.Store
	Config core.RuntimeConfig
	Logger *log.Logger

	// SetID opens the picker on this set. With Level it starts playing
	// right away.
	SetID string
	Level int
}

type sessionView int

const (
	viewPicker sessionView = iota
	viewPlay
	viewResults
)

// SessionModel manages the full session flow: picker -> play -> picker, with
// the results table reachable from the picker.
// This is the top-level model for both local and SSH sessions.
type SessionModel struct {
	store    *storage.Store
	config   core.RuntimeConfig
	logger   *log.Logger
	view     sessionView
	picker   LevelPickerModel
	play     *PlayModel
	results  ResultsModel
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := SessionModel{
		store:  opts.Store,
		config: opts.Config,
		logger: logger,
		picker: NewLevelPickerModel(opts.Store, opts.Config, opts.SetID),
	}

	if opts.SetID != "" && opts.Level > 0 {
		if err := m.startPlay(opts.SetID, opts.Level); err != nil {
			m.logger.Warn("cannot start level", "set", opts.SetID, "level", opts.Level, "error", err)
		}
	}
	return m
}

func (m *SessionModel) startPlay(setID string, level int) error {
	set, err := registry.Open(setID)
	if err != nil {
		return err
	}
	play, err := NewPlayModel(set, level, m.store, m.config, m.logger)
	if err != nil {
		return err
	}
	m.play = &play
	m.view = viewPlay
	return nil
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally so every view sees the latest size.
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
		next, _ := m.picker.Update(msg)
		m.picker = next.(LevelPickerModel)
		next, _ = m.results.Update(msg)
		m.results = next.(ResultsModel)
		if m.play != nil {
			next, _ := m.play.Update(msg)
			play := next.(PlayModel)
			m.play = &play
		}
		return m, nil
	}

	switch m.view {
	case viewPlay:
		return m.updatePlay(msg)
	case viewResults:
		return m.updateResults(msg)
	}
	return m.updatePicker(msg)
}

// updatePicker handles updates when in the level picker.
func (m SessionModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.picker.Update(msg)
	m.picker = next.(LevelPickerModel)

	if m.picker.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.picker.WantsScoreboard() {
		m.picker = m.picker.Refresh()
		m.results = NewResultsModel(m.store, m.config.ScreenW, m.config.ScreenH, m.picker.CurrentSet())
		m.view = viewResults
		return m, nil
	}

	if sel := m.picker.Selected(); sel != nil {
		m.picker = m.picker.Refresh()
		if err := m.startPlay(sel.SetID, sel.Level); err != nil {
			m.logger.Warn("cannot start level", "set", sel.SetID, "level", sel.Level, "error", err)
			m.picker.err = err.Error()
			return m, nil
		}
		return m, m.play.Init()
	}

	return m, cmd
}

// updatePlay handles updates while a level is being played.
func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.play.Update(msg)
	play := next.(PlayModel)
	m.play = &play

	if m.play.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.play.BackToMenu() {
		m.play = nil
		m.view = viewPicker
		m.picker = m.picker.Refresh()
		return m, nil
	}

	return m, cmd
}

// updateResults handles updates in the results table.
func (m SessionModel) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.results.Update(msg)
	m.results = next.(ResultsModel)

	if m.results.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.results.IsGoingBack() {
		m.results = m.results.Back()
		m.view = viewPicker
		return m, nil
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewPlay:
		if m.play != nil {
			return m.play.View()
		}
	case viewResults:
		return m.results.View()
	}
	return m.picker.View()
}

// RunSession runs an interactive session in the local terminal.
func RunSession(opts SessionOptions) error {
	p := tea.NewProgram(
		NewSessionModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
