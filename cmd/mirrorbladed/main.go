// Command mirrorbladed runs the MirrorBlade bridge sidecar and ships a
// small client for poking a running instance over the pipe endpoint.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OliviaAI-TGDK/MirrorBlade/bridge"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/rpc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mirrorbladed",
		Short:         "MirrorBlade control-plane sidecar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCallCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		hostRoot    string
		tuningPath  string
		logFile     string
		logLevel    string
		metricsAddr string
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sidecar until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := bridge.Defaults()
			if tuningPath != "" {
				var err error
				cfg, err = bridge.LoadConfigOverlay(tuningPath, cfg)
				if err != nil {
					return err
				}
			}
			if hostRoot != "" {
				cfg.HostRoot = hostRoot
			}
			if logFile != "" {
				cfg.LogFilePath = logFile
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if metricsAddr != "" {
				cfg.MetricsEnabled = true
				cfg.MetricsListenAddr = metricsAddr
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			b, err := bridge.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := b.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mirrorblade %s serving on %s\n", bridge.Version, b.SocketPath())
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return b.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&hostRoot, "host-root", "", "host root anchoring r6/config/MirrorBlade.json")
	cmd.Flags().StringVar(&tuningPath, "tuning", "", "optional YAML tuning overlay")
	cmd.Flags().StringVar(&logFile, "log-file", "", "log file path (rotated); empty logs to stderr")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "initial log level")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 = auto)")
	return cmd
}

func newCallCmd() *cobra.Command {
	var (
		pipeName string
		argsJSON string
	)
	cmd := &cobra.Command{
		Use:   "call <op> [args-json]",
		Short: "Send one request to a running sidecar and print the reply",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			op := cmdArgs[0]
			payload := argsJSON
			if len(cmdArgs) == 2 {
				payload = cmdArgs[1]
			}
			req := map[string]any{"v": rpc.ProtocolVersion, "id": uuid.NewString(), "op": op}
			if payload != "" {
				var parsed map[string]any
				if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
					return fmt.Errorf("args must be a JSON object: %w", err)
				}
				req["args"] = parsed
			}
			line, err := json.Marshal(req)
			if err != nil {
				return err
			}

			conn, err := rpc.Dial(rpc.SocketPathForPipe(pipeName))
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if _, err := conn.Write(append(line, '\n')); err != nil {
				return err
			}
			scanner := bufio.NewScanner(conn)
			scanner.Buffer(make([]byte, 64*1024), rpc.MaxLineBytes)
			if !scanner.Scan() {
				return fmt.Errorf("no reply: %v", scanner.Err())
			}
			fmt.Fprintln(cmd.OutOrStdout(), scanner.Text())
			return nil
		},
	}
	cmd.Flags().StringVar(&pipeName, "pipe", `\\.\pipe\MirrorBladeBridge-v1`, "pipe identifier of the running sidecar")
	cmd.Flags().StringVar(&argsJSON, "args", "", "request arguments as a JSON object")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), bridge.Version)
		},
	}
}
