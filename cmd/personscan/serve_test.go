package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/osintlab/personscan/internal/config"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "serve" {
			t.Errorf("expected use 'serve', got %q", cmd.Use)
		}
	})

	t.Run("has listen flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("listen")
		if flag == nil {
			t.Fatal("expected listen flag")
		}
		if flag.DefValue != config.DefaultListenAddress {
			t.Errorf("expected default %q, got %q", config.DefaultListenAddress, flag.DefValue)
		}
	})

	t.Run("has timeout flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"provider-timeout", "report-timeout"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has browser sessions flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("browser-sessions")
		if flag == nil {
			t.Fatal("expected browser-sessions flag")
		}
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"extra"}); err == nil {
			t.Error("expected error for positional arguments")
		}
	})
}

// TestBuildConfig tests config assembly from flags.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	findServe := func(t *testing.T) *cobra.Command {
		t.Helper()
		root := NewRootCmd()
		serve, _, err := root.Find([]string{"serve"})
		if err != nil {
			t.Fatalf("serve command not found: %v", err)
		}
		return serve
	}

	t.Run("defaults without config file", func(t *testing.T) {
		t.Parallel()

		serve := findServe(t)
		if err := serve.ParseFlags(nil); err != nil {
			t.Fatalf("flag parse failed: %v", err)
		}

		cfg, err := buildConfig(serve)
		if err != nil {
			t.Fatalf("buildConfig failed: %v", err)
		}
		if cfg.ListenAddress != config.DefaultListenAddress {
			t.Errorf("unexpected listen address %q", cfg.ListenAddress)
		}
		if cfg.ProviderTimeout != config.DefaultProviderTimeout {
			t.Errorf("unexpected provider timeout %v", cfg.ProviderTimeout)
		}
		if cfg.Verbose {
			t.Error("verbose should default to false")
		}
	})

	t.Run("missing explicit config file fails", func(t *testing.T) {
		t.Parallel()

		serve := findServe(t)
		if err := serve.ParseFlags([]string{"--config", "/nonexistent/personscan.yml"}); err != nil {
			t.Fatalf("flag parse failed: %v", err)
		}

		if _, err := buildConfig(serve); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}
