package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "umallocctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestConfigApply(t *testing.T) {
	resetFlags()
	cfg, err := loadConfig(writeConfig(t, `
backend: mmap
limit: 1MB
growth_factor: 8
check: true
`))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	cmd := newReplayCmd()
	addHeapFlags(cmd)
	if err := cmd.Flags().Set("growth-factor", "32"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.apply(cmd.Flags()); err != nil {
		t.Fatalf("apply() error = %v", err)
	}

	if heapFlags.backend != "mmap" {
		t.Errorf("backend = %q, want mmap", heapFlags.backend)
	}
	if heapFlags.limit != 1<<20 {
		t.Errorf("limit = %d, want %d", heapFlags.limit, 1<<20)
	}
	if !heapFlags.check {
		t.Error("check not applied")
	}
	if heapFlags.growthFactor != 32 {
		t.Errorf("growth factor = %d, command line value must win", heapFlags.growthFactor)
	}
}

func TestConfigApply_IgnoresForeignFlags(t *testing.T) {
	resetFlags()
	cfg, err := loadConfig(writeConfig(t, "seed: 7\nbackend: mmap\n"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	// gen has --seed but no --backend
	cmd := newGenCmd()
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "")
	if err := cfg.apply(cmd.Flags()); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if genSeed != 7 {
		t.Errorf("seed = %d, want 7", genSeed)
	}
	if heapFlags.backend != "memory" {
		t.Errorf("backend changed to %q", heapFlags.backend)
	}
}

func TestConfigLoad_Errors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loadConfig(writeConfig(t, "bogus_key: 1\n")); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := loadConfig(writeConfig(t, "")); err != nil {
		t.Errorf("empty config should load: %v", err)
	}

	resetFlags()
	cfg, err := loadConfig(writeConfig(t, "limit: plenty\n"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	cmd := newReplayCmd()
	addHeapFlags(cmd)
	if err := cfg.apply(cmd.Flags()); err == nil {
		t.Error("expected error for invalid limit")
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	resetFlags()
	cfgPath := writeConfig(t, "check: true\n")
	tracePath := writeTrace(t, smallTrace)

	rootCmd.SetArgs([]string{"replay", tracePath, "--config", cfgPath, "--json"})
	output, err := captureOutput(t, rootCmd.Execute)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got ReplaySummary
	assertJSON(t, output, &got)
	if got.Checks != 4 {
		t.Errorf("config did not enable checking: %+v", got)
	}
}

func TestSizeValue(t *testing.T) {
	tests := []struct {
		in      string
		want    sizeValue
		wantErr bool
	}{
		{"4096", 4096, false},
		{"64MB", 64 << 20, false},
		{"1.5KB", 1536, false},
		{"2GB", 2 << 30, false},
		{"-1", 0, true},
		{"plenty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s sizeValue
			err := s.Set(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && s != tt.want {
				t.Errorf("Set(%q) = %d, want %d", tt.in, s, tt.want)
			}
		})
	}

	s := sizeValue(1024)
	assertContains(t, s.String(), []string{"KB"})
	if s.Type() != "size" {
		t.Errorf("Type() = %q", s.Type())
	}
}
