package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bottle-sort/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bottle-sort SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with the level picker. Results are
stored per-server under the SSH user name (all users share the same table).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.bottlesort/host_key

Examples:
  bottlesort serve                           # Listen on :23234 with auto-generated key
  bottlesort serve --ssh :2222               # Listen on port 2222
  bottlesort serve --host-key ./my_host_key  # Use specific host key
  bottlesort serve --db ./results.db         # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes before disconnecting (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	a := setup(os.Stderr)

	addr := a.cfg.SSH.Address
	if flagSSHAddr != "" {
		addr = flagSSHAddr
	}
	hostKey := a.cfg.SSH.HostKeyPath
	if flagHostKey != "" {
		hostKey = flagHostKey
	}
	idle := a.cfg.IdleTimeout()
	if flagIdleTimeout > 0 {
		idle = time.Duration(flagIdleTimeout) * time.Minute
	}

	logger := newLogger(os.Stderr, "bottlesort-ssh")
	logger.SetLevel(a.logger.GetLevel())

	cfg := tui.SSHServerConfig{
		Address:     addr,
		HostKeyPath: hostKey,
		DBPath:      a.cfg.Storage.DBPath,
		IdleTimeout: idle,
		Play:        a.runtimeConfig(80, 24, ""),
		Logger:      logger,
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting bottle-sort SSH server on %s\n", cfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", port(cfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fail("server: %v", err)
	}
}

// port returns the port part of a listen address.
func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
