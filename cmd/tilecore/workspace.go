package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1broseidon/tilecore/internal/ipc"
)

func printWorkspaceUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tilecore workspace list [--json]                 List workspaces")
	fmt.Fprintln(w, "  tilecore workspace add [--layout NAME] <name>    Create a workspace")
	fmt.Fprintln(w, "  tilecore workspace remove <name>                 Remove a workspace")
	fmt.Fprintln(w, "  tilecore workspace activate [--monitor N] <name> Show a workspace")
	fmt.Fprintln(w, "  tilecore workspace rename <old> <new>            Rename a workspace")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tilecore workspace <command> --help' for command-specific options.")
}

func runWorkspace(args []string) int {
	if len(args) == 0 {
		printWorkspaceUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printWorkspaceUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		jsonOut := fs.Bool("json", false, "Output as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		data, err := client.ListWorkspaces()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			return printJSON(os.Stdout, data.Workspaces)
		}
		writeWorkspaces(os.Stdout, data.Workspaces, stdoutIsTerminal())
		return 0

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: tilecore workspace add [--layout NAME] <name>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Create a hidden workspace. Names must be unique.")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		layout := fs.String("layout", "", "Layout for the workspace (default: config default_layout)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "workspace add requires <name>")
			fs.Usage()
			return 2
		}
		info, err := client.AddWorkspace(fs.Arg(0), *layout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("added workspace %q (id %d, layout %s)\n", info.Name, info.ID, info.Layout)
		return 0

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: tilecore workspace remove <name>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Remove a workspace. Its windows move to a fallback workspace.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "workspace remove requires <name>")
			fs.Usage()
			return 2
		}
		removed, err := client.RemoveWorkspace(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !removed {
			fmt.Fprintf(os.Stderr, "workspace %q not removed\n", fs.Arg(0))
			return 1
		}
		return 0

	case "activate":
		fs := flag.NewFlagSet("activate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: tilecore workspace activate [--monitor N] <name>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Show a workspace on the focused monitor, or on monitor N.")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
		monitorID := fs.Int("monitor", -1, "Target monitor id (default: focused monitor)")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "workspace activate requires <name>")
			fs.Usage()
			return 2
		}
		var monitor *int
		if *monitorID >= 0 {
			monitor = monitorID
		}
		if err := client.ActivateWorkspace(fs.Arg(0), monitor); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "rename":
		fs := flag.NewFlagSet("rename", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: tilecore workspace rename <old> <new>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "workspace rename requires <old> <new>")
			fs.Usage()
			return 2
		}
		if err := client.RenameWorkspace(fs.Arg(0), fs.Arg(1)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown workspace command: %s\n\n", args[0])
		printWorkspaceUsage(os.Stderr)
		return 2
	}
}

func runWindow(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tilecore window move <window-id> <workspace>")
		return 2
	}

	switch args[0] {
	case "move":
		fs := flag.NewFlagSet("move", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: tilecore window move <window-id> <workspace>")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Move a managed window to another workspace.")
			fmt.Fprintln(os.Stderr, "Window ids accept decimal or 0x-prefixed hex.")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "window move requires <window-id> <workspace>")
			fs.Usage()
			return 2
		}
		windowID, err := parseWindowID(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if err := ipc.NewClient().MoveWindow(windowID, fs.Arg(1)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n", args[0])
		return 2
	}
}

// parseWindowID accepts the decimal and 0x-prefixed forms xprop and wmctrl
// print.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}
