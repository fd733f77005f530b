package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsFirstLaunch(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !p.FirstLaunch {
		t.Fatal("FirstLaunch = false, want true for a fresh install")
	}
	if p.Language != defaultLanguage {
		t.Fatalf("Language = %q, want %q", p.Language, defaultLanguage)
	}
}

func TestLoad_UnsupportedLanguageFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("language = \"zz\"\nfirst_launch = false\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Language != defaultLanguage {
		t.Fatalf("Language = %q, want fallback %q", p.Language, defaultLanguage)
	}
	if p.FirstLaunch {
		t.Fatal("FirstLaunch = true, want false from file")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	if err := Save(path, Prefs{Language: "ru", FirstLaunch: false}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Language != "ru" || p.FirstLaunch {
		t.Fatalf("round trip = %+v, want language ru, first_launch false", p)
	}
}
