package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/1broseidon/tilecore/internal/config"
	"github.com/1broseidon/tilecore/internal/ipc"
)

func TestParseWindowID(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
		ok   bool
	}{
		{"4194307", 4194307, true},
		{"0x400003", 0x400003, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"0x1ffffffff", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := parseWindowID(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("parseWindowID(%q): %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseWindowID(%q) = %d, want error", tc.in, got)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("parseWindowID(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestWriteWorkspaces_Plain(t *testing.T) {
	monitor := 1
	var buf bytes.Buffer
	writeWorkspaces(&buf, []ipc.WorkspaceInfo{
		{ID: 1, Name: "main", Layout: "grid", Monitor: &monitor, Active: true, Windows: []uint32{10, 11}},
		{ID: 2, Name: "web", Layout: "columns", Windows: []uint32{}},
	}, false)

	want := "1\tmain\tgrid\t1\t2\t*\n2\tweb\tcolumns\t-\t0\t\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteMonitors_Table(t *testing.T) {
	var buf bytes.Buffer
	writeMonitors(&buf, []ipc.MonitorInfo{
		{ID: 0, Name: "DP-1", Width: 1920, Height: 1080, Workspace: "main"},
		{ID: 1, Name: "HDMI-1", X: 1920, Width: 1280, Height: 1024},
	}, true)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "WORKSPACE") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "1920x1080+0+0") || !strings.HasSuffix(lines[1], "main") {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if !strings.Contains(lines[2], "1280x1024+1920+0") || !strings.HasSuffix(lines[2], "-") {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestFormatSource(t *testing.T) {
	cases := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
	}
	for _, tc := range cases {
		if got := formatSource(tc.src); got != tc.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestWriteSources_Sorted(t *testing.T) {
	var buf bytes.Buffer
	writeSources(&buf, map[string]config.Source{
		"workspaces":     {Kind: config.SourceFile, File: "a.yaml", Line: 2, Column: 1},
		"default_layout": {Kind: config.SourceFile, File: "a.yaml", Line: 1, Column: 1},
	})
	want := "default_layout\tfile:a.yaml:1:1\nworkspaces\tfile:a.yaml:2:1\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestRunCommands_UsageErrors(t *testing.T) {
	cases := []struct {
		name string
		run  func([]string) int
		args []string
	}{
		{"workspace without command", runWorkspace, nil},
		{"workspace add without name", runWorkspace, []string{"add"}},
		{"workspace rename with one name", runWorkspace, []string{"rename", "main"}},
		{"workspace unknown command", runWorkspace, []string{"frobnicate"}},
		{"window move bad id", runWindow, []string{"move", "nope", "main"}},
		{"window move missing workspace", runWindow, []string{"move", "0x400003"}},
		{"status extra argument", runStatus, []string{"extra"}},
		{"config unknown subcommand", runConfig, []string{"explain"}},
		{"mcp without command", runMCP, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rc := tc.run(tc.args); rc != 2 {
				t.Fatalf("rc=%d, want 2", rc)
			}
		})
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	if err := os.WriteFile(path, []byte("workspaces: [main, web]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if rc := runConfig([]string{"validate", "--path", path}); rc != 0 {
		t.Fatalf("validate rc=%d, want 0", rc)
	}

	bad := dir + "/bad.yaml"
	if err := os.WriteFile(bad, []byte("not_a_key: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate rc=%d, want 1", rc)
	}
}
