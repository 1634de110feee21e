package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/tilecore/internal/config"
	"github.com/1broseidon/tilecore/internal/daemon"
	"github.com/1broseidon/tilecore/internal/hotkeys"
	"github.com/1broseidon/tilecore/internal/ipc"
	"github.com/1broseidon/tilecore/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "workspace":
		os.Exit(runWorkspace(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tilecore <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tilecore daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  monitors            List monitors and the workspace each one shows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  workspace list      List workspaces")
	fmt.Fprintln(w, "  workspace add       Create a workspace")
	fmt.Fprintln(w, "  workspace remove    Remove a workspace")
	fmt.Fprintln(w, "  workspace activate  Show a workspace on a monitor")
	fmt.Fprintln(w, "  workspace rename    Rename a workspace")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window move         Move a window to another workspace")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tilecore <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilecore daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the workspace coordinator in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("config", "", "Config file path (default: ~/.config/tilecore/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	configPath, err := resolveConfigPath(*path)
	if err != nil {
		log.Fatalf("Failed to resolve config path: %v", err)
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	logger.Info("configuration loaded",
		"files", len(res.Files),
		"workspaces", len(cfg.Workspaces),
		"default_layout", cfg.DefaultLayout)

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	backend, err := platform.OpenLinuxBackend(cfg.Display, logger.With("component", "x11"))
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}

	d, err := daemon.New(cfg, backend, logger)
	if err != nil {
		log.Fatalf("Failed to create daemon: %v", err)
	}
	if err := d.Start(); err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}

	if len(cfg.WorkspaceHotkeys) > 0 {
		handler := hotkeys.NewHandler(backend.XUtil(), logger.With("component", "hotkeys"))
		if err := handler.RegisterWorkspaceKeys(cfg.WorkspaceHotkeys, d.Coordinator()); err != nil {
			logger.Warn("some workspace hotkeys were not registered", "error", err)
		}
	}

	server, err := ipc.NewServer("", d, logger.With("component", "ipc"))
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := func(res *config.LoadResult) {
		if err := d.Reload(ctx, res.Config); err != nil {
			logger.Warn("config reload failed", "error", err)
			return
		}
		level.Set(res.Config.SlogLevel())
	}
	go func() {
		if err := config.Watch(ctx, configPath, 0, logger.With("component", "config"), reload); err != nil {
			logger.Warn("config watching disabled", "error", err)
		}
	}()
	go reloadOnHangup(ctx, configPath, logger, reload)

	logger.Info("entering event loop", "socket", server.SocketPath(), "config", configPath)
	before, after, quit := backend.MainPing()
	runErr := d.Run(ctx, before, after, quit)

	// X callbacks stop before the coordinator's observers are detached.
	server.Stop()
	backend.Disconnect()
	d.Close()

	switch {
	case runErr == nil:
		logger.Info("tilecore daemon stopped")
		return 0
	case errors.Is(runErr, daemon.ErrHostClosed):
		logger.Warn("display connection closed")
		return 1
	default:
		logger.Error("daemon stopped", "error", runErr)
		return 1
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilecore status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(os.Stdout, status)
	}
	fmt.Printf("daemon_running:   %v\n", status.DaemonRunning)
	fmt.Printf("active_workspace: %s\n", status.ActiveWorkspace)
	fmt.Printf("workspaces:       %d\n", status.Workspaces)
	fmt.Printf("monitors:         %d\n", status.Monitors)
	fmt.Printf("windows:          %d\n", status.Windows)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilecore monitors [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List monitors known to the daemon.")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "monitors takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(os.Stdout, data.Monitors)
	}
	writeMonitors(os.Stdout, data.Monitors, stdoutIsTerminal())
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tilecore config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tilecore config print [--path PATH] [--sources]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tilecore/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, file := range res.Files {
			fmt.Printf("loaded: %s\n", file)
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tilecore/config.yaml)")
		showSources := fs.Bool("sources", false, "Print where each configured key came from")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *showSources {
			writeSources(os.Stdout, res.Sources)
			return 0
		}
		if err := printYAML(os.Stdout, res.Config); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// reloadOnHangup reloads the configuration on SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, path string, logger *slog.Logger, apply func(*config.LoadResult)) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("received SIGHUP, reloading config")
			res, err := config.LoadFromPath(path)
			if err != nil {
				logger.Warn("config reload rejected", "error", err)
				continue
			}
			apply(res)
		}
	}
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

func loadConfig(path string) (*config.LoadResult, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(resolved)
}
