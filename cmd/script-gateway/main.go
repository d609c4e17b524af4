// ABOUTME: Entry point for the script-gateway server
// ABOUTME: Runs registered analysis scripts and streams their output over HTTP

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/finrobot/script-gateway/internal/auth"
	"github.com/finrobot/script-gateway/internal/config"
	"github.com/finrobot/script-gateway/internal/gateway"
	"github.com/finrobot/script-gateway/internal/script"
	"github.com/finrobot/script-gateway/internal/script/builtin"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                _       _                     _
  ___  ___ _ __(_)_ __ | |_       __ _  __ _| |_ _____      ____ _ _   _
 / __|/ __| '__| | '_ \| __|____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
 \__ \ (__| |  | | |_) | ||_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
 |___/\___|_|  |_| .__/ \__|     \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                 |_|             |___/                             |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: SCRIPT_GATEWAY_CONFIG env var > XDG_CONFIG_HOME/script-gateway/gateway.yaml > ~/.config/script-gateway/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SCRIPT_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "script-gateway", "gateway.yaml")
}

// getDataPath returns the path to the script-gateway data directory.
// Priority: XDG_DATA_HOME/script-gateway > ~/.local/share/script-gateway
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "script-gateway")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: script-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                    Start the gateway server")
		fmt.Println("  init                     Create a new config file interactively")
		fmt.Println("  health                   Check gateway health")
		fmt.Println("  scripts                  List registered scripts")
		fmt.Println("  token --subject NAME     Generate an API token")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "scripts":
		err = runScripts(ctx)
	case "token":
		err = runToken()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildRegistry(logger *slog.Logger) (*script.Registry, error) {
	reg := script.NewRegistry(logger)
	if err := builtin.RegisterAll(reg); err != nil {
		return nil, fmt.Errorf("registering builtin scripts: %w", err)
	}
	return reg, nil
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	reg, err := buildRegistry(logger)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Scripts:  %d registered\n", len(reg.List()))
	fmt.Println()

	logger.Info("starting script-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"scripts", len(reg.List()),
	)

	gw, err := gateway.New(cfg, reg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs), then record attrs
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// runScripts lists the scripts registered on a running gateway. It reads the
// saved token file when the server requires auth.
func runScripts(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/scripts", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	tokenPath := filepath.Join(filepath.Dir(configPath), "token")
	if token, err := os.ReadFile(tokenPath); err == nil {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(string(token)))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("listing scripts failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing scripts failed: status %d: %s", resp.StatusCode, body)
	}

	var listing struct {
		Folders []struct {
			Folder  string `json:"folder"`
			Scripts []struct {
				Name        string `json:"name"`
				Path        string `json:"path"`
				Description string `json:"description"`
			} `json:"scripts"`
		} `json:"folders"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	for _, folder := range listing.Folders {
		cyan.Printf("%s/\n", folder.Folder)
		for _, sc := range folder.Scripts {
			fmt.Printf("  %s", sc.Name)
			if sc.Description != "" {
				gray.Printf("  %s", sc.Description)
			}
			fmt.Println()
		}
	}
	return nil
}

// runToken generates a JWT for API access using the configured secret and
// saves it next to the config file.
func runToken() error {
	// Supports both "--subject value" and "--subject=value" formats
	var subject string
	ttl := 30 * 24 * time.Hour
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--subject" || arg == "-s":
			if i+1 >= len(args) {
				return fmt.Errorf("--subject requires a value")
			}
			subject = args[i+1]
			i++
		case strings.HasPrefix(arg, "--subject="):
			subject = strings.TrimPrefix(arg, "--subject=")
		case arg == "--ttl":
			if i+1 >= len(args) {
				return fmt.Errorf("--ttl requires a value")
			}
			parsed, err := time.ParseDuration(args[i+1])
			if err != nil {
				return fmt.Errorf("invalid --ttl: %w", err)
			}
			ttl = parsed
			i++
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return fmt.Errorf("--subject flag is required")
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt_secret not configured in %s", configPath)
	}

	token, err := auth.GenerateToken([]byte(cfg.Auth.JWTSecret), subject, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	tokenPath := filepath.Join(filepath.Dir(configPath), "token")
	if err := os.WriteFile(tokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Saved token: %s\n", tokenPath)
	fmt.Printf("  Subject: %s\n", subject)
	fmt.Printf("  Expires: %s\n", time.Now().Add(ttl).UTC().Format("Jan 02, 2006"))
	fmt.Println()
	fmt.Println(token)
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("script-gateway configuration setup")
	fmt.Println("==================================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "gateway.db")
	defaultOutputDir := filepath.Join(defaultDataPath, "output")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Scripts Configuration ---")
	outputDir := prompt(reader, "Script output directory", defaultOutputDir)
	defaultLang := prompt(reader, "Default language", "en")

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# script-gateway configuration\n")
	cfg.WriteString("# Generated by script-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("  shutdown_timeout: \"10s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("scripts:\n")
	cfg.WriteString(fmt.Sprintf("  output_dir: \"%s\"\n", outputDir))
	cfg.WriteString(fmt.Sprintf("  default_lang: \"%s\"\n", defaultLang))
	cfg.WriteString("\n")

	cfg.WriteString("history:\n")
	cfg.WriteString("  default_limit: 20\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))
	cfg.WriteString("\n")

	cfg.WriteString("metrics:\n")
	cfg.WriteString("  enabled: false\n")
	cfg.WriteString("  path: \"/metrics\"\n")

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	for _, dir := range []string{filepath.Dir(dbPath), outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  script-gateway serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
