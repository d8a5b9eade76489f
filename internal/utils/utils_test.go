package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsValidRecordName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"projects", true},
		{"people", true},
		{"app-settings_v2", true},
		{"notes.2024", true},
		{"", false},
		{".hidden", false},
		{"../escape", false},
		{"a..b", false},
		{"dir/file", false},
		{`dir\file`, false},
		{"with space", false},
		{strings.Repeat("r", MaxRecordNameLength), true},
		{strings.Repeat("r", MaxRecordNameLength+1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidRecordName(tc.name); got != tc.valid {
				t.Errorf("IsValidRecordName(%q) = %v, expected %v", tc.name, got, tc.valid)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", homeDir},
		{"~/pulse", filepath.Join(homeDir, "pulse")},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
		{"~other", "~other"},
	}
	for _, tc := range tests {
		got, err := ExpandHome(tc.input)
		if err != nil {
			t.Fatalf("ExpandHome(%q) failed: %v", tc.input, err)
		}
		if got != tc.expected {
			t.Errorf("ExpandHome(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestCheckWritableDir(t *testing.T) {
	dir := t.TempDir()
	if err := CheckWritableDir(dir); err != nil {
		t.Fatalf("CheckWritableDir failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Write check file was left behind: %v", entries)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := CheckWritableDir(file); err == nil {
		t.Error("Expected error for a regular file")
	}
	if err := CheckWritableDir(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestReadLine(t *testing.T) {
	got, err := ReadLine(strings.NewReader("hunter2\r\nignored\n"))
	if err != nil || got != "hunter2" {
		t.Errorf("ReadLine = %q, %v", got, err)
	}

	got, err = ReadLine(strings.NewReader("no newline"))
	if err != nil || got != "no newline" {
		t.Errorf("ReadLine = %q, %v", got, err)
	}

	if _, err := ReadLine(strings.NewReader("\n")); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestFormatPaths(t *testing.T) {
	out := FormatPaths([]string{"projects", "people"})
	if !strings.Contains(out, "projects") || !strings.Contains(out, "people") {
		t.Errorf("Unexpected output %q", out)
	}
	if strings.Count(out, "    - ") != 2 {
		t.Errorf("Expected two list items, got %q", out)
	}
}
