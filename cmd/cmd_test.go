package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		configPath = ""
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckDefaults(t *testing.T) {
	out, err := execute(t, "check", "--steps", "2")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	for _, want := range []string{
		"config ok: 3 sections, 4 segments",
		"(arms spin)",
		"spin: axis y",
		"marquee: pattern width",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPrintsYAML(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "window:") || !strings.Contains(out, "arms_spin: true") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestCheckRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("window:\n  width: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "check", "--config", path); err == nil {
		t.Error("check accepted an invalid config")
	}
}
