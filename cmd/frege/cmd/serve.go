package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/frege/internal/playground/server"
	corerpc "github.com/msto63/frege/pkg/core/grpc"
)

var (
	serveAddr     string
	serveGRPCPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playground server",
	Long: `Starts the playground server.

Endpoints:
  /ws                    WebSocket: run and ping messages
  POST /api/v1/run       run one program
  GET  /api/v1/history   recorded runs
  /healthz               health report

gRPC (default port 8421, -1 disables):
  frege.playground.v1.Playground/Run
  grpc.health.v1.Health

Examples:
  frege serve
  frege serve --addr 0.0.0.0:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address host:port (default from config)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC port, -1 disables (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := server.DefaultConfig()
	cfg.Host = appConfig.Playground.Host
	cfg.Port = appConfig.Playground.Port
	cfg.RunTimeout = appConfig.Playground.RunTimeout.Duration
	cfg.MaxMessageSize = appConfig.Playground.MaxMessageSize
	cfg.CacheSize = max(appConfig.Playground.CacheSize, 0)
	cfg.CacheTTL = appConfig.Playground.CacheTTL.Duration

	if serveAddr != "" {
		host, port, err := parseAddr(serveAddr)
		if err != nil {
			return err
		}
		cfg.Host, cfg.Port = host, port
	}

	history, err := openHistory()
	if err != nil {
		logger.WarnWithErr("run history unavailable", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	srv, err := server.New(cfg, server.Options{
		Engine:  newEngine(nil),
		History: history,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 2)
	go func() {
		errCh <- srv.Start()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Frege playground on http://%s\n", srv.Address())
	fmt.Fprintf(out, "WebSocket:    ws://%s/ws\n", srv.Address())
	fmt.Fprintf(out, "Health Check: http://%s/healthz\n", srv.Address())

	grpcPort := appConfig.Playground.GRPCPort
	if serveGRPCPort != 0 {
		grpcPort = serveGRPCPort
	}
	if grpcPort > 0 {
		gcfg := corerpc.DefaultServerConfig()
		gcfg.Host = cfg.Host
		gcfg.Port = grpcPort
		gcfg.MaxRecvMsgSize = int(cfg.MaxMessageSize)

		gs := corerpc.NewServer(gcfg, logger)
		srv.RegisterGRPC(gs.GRPCServer(), 10*time.Second)
		go func() {
			errCh <- gs.Start()
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			gs.StopWithTimeout(ctx)
		}()
		fmt.Fprintf(out, "gRPC:         %s\n", gs.Address())
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	select {
	case <-sigCh:
		fmt.Fprintln(out, "\nStopping playground...")
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func parseAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, errors.New("invalid port in address " + strconv.Quote(addr))
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host, port, nil
}
