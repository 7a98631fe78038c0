package cliapp

import (
	"errors"
	"flag"
	"strings"
	"testing"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantInput  string
		wantStdin  bool
		wantMode   outputMode
		wantPath   string
		wantConfig bool
	}{
		{name: "in place", args: []string{"s.ardour"}, wantInput: "s.ardour", wantMode: outputInPlace},
		{name: "output file", args: []string{"-o", "out.ardour", "s.ardour"}, wantInput: "s.ardour", wantMode: outputFile, wantPath: "out.ardour"},
		{name: "option after input", args: []string{"s.ardour", "-o", "out.ardour"}, wantInput: "s.ardour", wantMode: outputFile, wantPath: "out.ardour"},
		{name: "output file with equals", args: []string{"-o=out.ardour", "s.ardour"}, wantInput: "s.ardour", wantMode: outputFile, wantPath: "out.ardour"},
		{name: "output stdout", args: []string{"-o", "-", "s.ardour"}, wantInput: "s.ardour", wantMode: outputStdout},
		{name: "stdin implies stdout", args: []string{"-"}, wantInput: "-", wantStdin: true, wantMode: outputStdout},
		{name: "stdin to file", args: []string{"-", "-o", "x"}, wantInput: "-", wantStdin: true, wantMode: outputFile, wantPath: "x"},
		{name: "dash after terminator is a file", args: []string{"--", "-"}, wantInput: "-", wantMode: outputInPlace},
		{name: "dashed name after terminator", args: []string{"-o", "x", "--", "-o"}, wantInput: "-o", wantMode: outputFile, wantPath: "x"},
		{name: "explicit config", args: []string{"-config", "c.toml", "s.ardour"}, wantInput: "s.ardour", wantConfig: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseOptions(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if opts.input != tt.wantInput || opts.stdin != tt.wantStdin {
				t.Fatalf("input = %q stdin = %v, want %q %v", opts.input, opts.stdin, tt.wantInput, tt.wantStdin)
			}
			if opts.output.mode != tt.wantMode || opts.output.path != tt.wantPath {
				t.Fatalf("output = %+v, want mode %v path %q", opts.output, tt.wantMode, tt.wantPath)
			}
			if opts.configExplicit != tt.wantConfig {
				t.Fatalf("configExplicit = %v", opts.configExplicit)
			}
		})
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", nil, "missing argument"},
		{"two inputs", []string{"a", "b"}, "unexpected argument: b"},
		{"duplicate output", []string{"-o", "x", "-o", "y", "a"}, "duplicate option: -o"},
		{"duplicate output after input", []string{"-o", "-", "a", "-o", "y"}, "duplicate option: -o"},
		{"output without value", []string{"a", "-o"}, "flag needs an argument"},
		{"output attached to flag", []string{"-oout.ardour", "a"}, "flag provided but not defined: -oout.ardour"},
		{"unknown option", []string{"-x", "a"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOptions(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseOptionsHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"a", "-h"}} {
		if _, err := parseOptions(args); !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("%v: expected flag.ErrHelp, got %v", args, err)
		}
	}
}

func TestParseOptionsExportCatalog(t *testing.T) {
	opts, err := parseOptions([]string{"-export-catalog", "ports.db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.exportCatalog != "ports.db" {
		t.Fatalf("exportCatalog = %q", opts.exportCatalog)
	}
	if _, err := parseOptions([]string{"-export-catalog", "ports.db", "s.ardour"}); err == nil {
		t.Fatal("expected error for session file with -export-catalog")
	}
}
