package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/remedy/internal/api"
	"github.com/kalambet/remedy/internal/config"
	"github.com/kalambet/remedy/internal/engine"
	"github.com/kalambet/remedy/internal/pipeline"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the remedy server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running remedy server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show remedy system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func init() {
	startCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

// dataDir is where the symptom file lives; the PID file sits next to it.
func dataDir(cfg config.Config) string {
	return filepath.Dir(cfg.Database.SymptomsPath)
}

func pidFilePath(dir string) string {
	return filepath.Join(dir, "remedy.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "remedy version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to stderr; stdout carries the MCP stream when enabled.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)})))

	pidPath := pidFilePath(dataDir(cfg))
	healthURL := serverBaseURL(cfg.Server) + "/health"
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("remedy is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("remedy is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch, gen, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	if cfg.Model.Provider == config.ProviderGemini && gen == nil {
		printWarning("no Gemini API key set; using rule-based extraction only")
	}
	if err := engine.EnsureReady(ctx, gen, os.Stderr); err != nil {
		// The rules still answer every turn.
		slog.Warn("model backend not ready", "error", err)
	}

	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	handler := api.NewHandler(api.Deps{
		Orchestrator:   orch,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{Store: orch.Store(), Chat: orch})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("remedy listening", "addr", addr, "symptoms", cfg.Database.SymptomsPath, "interventions", cfg.Database.InterventionsPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(dataDir(cfg))
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("remedy is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop remedy (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to remedy (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	baseURL := serverBaseURL(cfg.Server)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on %s", cfg.Server.Addr())
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Model backend", "%s", engine.Describe(engine.Detect(cfg)))
	if cfg.Model.Provider == config.ProviderOllama {
		ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
		if err != nil {
			printStatus("Ollama", "not running")
		} else {
			ollamaResp.Body.Close()
			printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
		}
	}

	if running {
		ac := &apiClient{baseURL: baseURL, httpClient: client}
		ctx := context.Background()
		for _, c := range []struct{ label, path string }{
			{"Symptoms", "/symptoms/getAll"},
			{"Interventions", "/interventions/getAll"},
		} {
			if n, err := countRecords(ctx, ac, c.path); err == nil {
				printStatus(c.label, "%d", n)
			}
		}
	}

	printStatus("Symptoms file", "%s", cfg.Database.SymptomsPath)
	printStatus("Interventions file", "%s", cfg.Database.InterventionsPath)
	return nil
}

func countRecords(ctx context.Context, c *apiClient, path string) (int, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return 0, err
	}
	var items []json.RawMessage
	if err := decodeEnvelope(resp, &items); err != nil {
		return 0, err
	}
	return len(items), nil
}
