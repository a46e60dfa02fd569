package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", c.Server.Port)
	}
	if c.Server.BodyLimit != "100M" {
		t.Errorf("BodyLimit = %s", c.Server.BodyLimit)
	}
	if !c.Cleanup.Enabled {
		t.Error("expected cleanup enabled by default")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("MAX_FILE_SIZE_MB", "25")
	t.Setenv("ALLOWED_EXTENSIONS", "pdf, .PNG")
	t.Setenv("CLEANUP_MAX_AGE_HOURS", "2.5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Server.Port != 8088 {
		t.Errorf("Port = %d, want 8088", c.Server.Port)
	}
	if got := c.GetServerAddr(); got != "127.0.0.1:8088" {
		t.Errorf("GetServerAddr = %s", got)
	}
	if c.Server.BodyLimit != "25M" {
		t.Errorf("BodyLimit = %s, want 25M", c.Server.BodyLimit)
	}
	if len(c.Storage.AllowedExtensions) != 2 {
		t.Fatalf("AllowedExtensions = %v", c.Storage.AllowedExtensions)
	}
	if c.Storage.AllowedExtensions[0] != ".pdf" || c.Storage.AllowedExtensions[1] != ".png" {
		t.Errorf("AllowedExtensions = %v", c.Storage.AllowedExtensions)
	}
	wantMaxAge := 2*60 + 30 // minutes
	if int(c.Cleanup.MaxAge.Minutes()) != wantMaxAge {
		t.Errorf("MaxAge = %v", c.Cleanup.MaxAge)
	}
	if c.Advanced.LogLevel != "debug" {
		t.Errorf("LogLevel = %s", c.Advanced.LogLevel)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "nope"},
		{"negative size", "MAX_FILE_SIZE_MB", "-5"},
		{"bad max age", "CLEANUP_MAX_AGE_HOURS", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestExtensionAllowed(t *testing.T) {
	c := DefaultConfig()

	tests := []struct {
		ext  string
		want bool
	}{
		{".pdf", true},
		{".PDF", true},
		{".png", true},
		{".exe", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := c.ExtensionAllowed(tt.ext); got != tt.want {
			t.Errorf("ExtensionAllowed(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}
