package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/tilecore/internal/config"
	"github.com/1broseidon/tilecore/internal/ipc"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeWorkspaces prints an aligned table on a terminal and one
// tab-separated line per workspace otherwise.
func writeWorkspaces(w io.Writer, workspaces []ipc.WorkspaceInfo, table bool) {
	out := w
	var tw *tabwriter.Writer
	if table {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		out = tw
		fmt.Fprintln(out, "ID\tNAME\tLAYOUT\tMONITOR\tWINDOWS\tACTIVE")
	}
	for _, ws := range workspaces {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%d\t%s\n",
			ws.ID, ws.Name, ws.Layout, monitorLabel(ws.Monitor), len(ws.Windows), activeMark(ws.Active))
	}
	if tw != nil {
		tw.Flush()
	}
}

func writeMonitors(w io.Writer, monitors []ipc.MonitorInfo, table bool) {
	out := w
	var tw *tabwriter.Writer
	if table {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		out = tw
		fmt.Fprintln(out, "ID\tNAME\tGEOMETRY\tWORKSPACE")
	}
	for _, m := range monitors {
		fmt.Fprintf(out, "%d\t%s\t%dx%d+%d+%d\t%s\n",
			m.ID, m.Name, m.Width, m.Height, m.X, m.Y, orDash(m.Workspace))
	}
	if tw != nil {
		tw.Flush()
	}
}

// writeSources prints "path<TAB>source" for each configured key, sorted by
// path.
func writeSources(w io.Writer, sources map[string]config.Source) {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(w, "%s\t%s\n", p, formatSource(sources[p]))
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}

func monitorLabel(monitor *int) string {
	if monitor == nil {
		return "-"
	}
	return strconv.Itoa(*monitor)
}

func activeMark(active bool) string {
	if active {
		return "*"
	}
	return ""
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
