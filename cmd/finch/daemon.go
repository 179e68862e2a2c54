package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finchapp/finch/internal/api"
	"github.com/finchapp/finch/internal/backend"
	"github.com/finchapp/finch/internal/config"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the finch backend daemon",
	Long:  "Start the backend the Finch shell and front-end talk to: secret storage, file commands, and the file-pick broker.",
	RunE:  runDaemon,
}

var (
	apiAddrFlag    string
	configPathFlag string
)

func init() {
	daemonCmd.Flags().StringVar(&apiAddrFlag, "api-addr", "", `TCP address for the API ("auto" for an OS-assigned loopback port)`)
	daemonCmd.Flags().StringVar(&configPathFlag, "config", "", "Config file path (default ~/.finch/config.yaml)")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfgPath := configPathFlag
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if apiAddrFlag != "" {
		cfg.APIAddr = apiAddrFlag
	}

	slog.Info("finch daemon starting", "data_dir", cfg.DataDir, "secrets_backend", cfg.SecretsBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	b, err := backend.New(cfg, "daemon")
	if err != nil {
		return fmt.Errorf("starting backend: %w", err)
	}
	defer b.Close()
	go b.Run(ctx)

	socketPath := defaultSocketPath()
	// Remove stale socket
	os.Remove(socketPath)
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("creating socket dir: %w", err)
	}

	srv := api.NewServer(b)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenUnix(socketPath)
	}()

	portFile := ""
	if cfg.APIAddr != "" {
		addr := cfg.APIAddr
		if addr == "auto" {
			addr = "127.0.0.1:0"
		}
		tcpAddr, tcpErrCh, err := srv.ListenTCP(addr)
		if err != nil {
			return fmt.Errorf("starting TCP API: %w", err)
		}
		go func() {
			if err := <-tcpErrCh; err != nil {
				slog.Error("TCP API error", "error", err)
			}
		}()

		// The shell discovers the assigned port through the port file.
		if cfg.APIAddr == "auto" {
			portFile = portFilePath()
			port := tcpAddr.(*net.TCPAddr).Port
			if err := os.WriteFile(portFile, []byte(strconv.Itoa(port)), 0600); err != nil {
				return fmt.Errorf("writing port file: %w", err)
			}
			slog.Info("API port file written", "path", portFile, "port", port)
		}
	}

	slog.Info("finch daemon ready", "socket", socketPath)

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		if err != nil {
			slog.Error("API server error", "error", err)
		}
	}

	cancel()
	srv.Shutdown(context.Background())
	os.Remove(socketPath)
	if portFile != "" {
		os.Remove(portFile)
	}

	slog.Info("finch daemon stopped")
	return nil
}
