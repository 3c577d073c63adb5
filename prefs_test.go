package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestFilePreferencesMissingFile(t *testing.T) {
	prefs := NewFilePreferences(filepath.Join(t.TempDir(), "missing"))

	v, ok, err := prefs.Get("anything")
	if err != nil {
		t.Fatalf("Get() on missing file should not fail, got %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get() = (%q, %v), expected no value", v, ok)
	}
}

func TestFilePreferencesSetAndGet(t *testing.T) {
	dir := t.TempDir()
	prefs := NewFilePreferences(dir)

	if err := prefs.Set("a", "1"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := prefs.Set("b", `{"json":true}`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := prefs.Set("a", "2"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// A fresh instance reads what the first one wrote
	reopened := NewFilePreferences(dir)
	tests := map[string]string{"a": "2", "b": `{"json":true}`}
	for key, want := range tests {
		got, ok, err := reopened.Get(key)
		if err != nil || !ok {
			t.Fatalf("Get(%q) = (%q, %v, %v)", key, got, ok, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}

	if prefs.Path() != filepath.Join(dir, "note_widget_prefs.json") {
		t.Errorf("Unexpected preferences path %s", prefs.Path())
	}
}

func TestFilePreferencesLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	prefs := NewFilePreferences(dir)
	for i := 0; i < 5; i++ {
		if err := prefs.Set("k", fmt.Sprint(i)); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestFilePreferencesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	prefs := NewFilePreferences(dir)
	if err := os.WriteFile(prefs.Path(), []byte("invalid json {{{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := prefs.Get("k"); err == nil {
		t.Error("Get() on corrupt file should return an error")
	}

	// Writing replaces the corrupt file
	if err := prefs.Set("k", "v"); err != nil {
		t.Fatalf("Set() over corrupt file failed: %v", err)
	}
	v, ok, err := prefs.Get("k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Get() after repair = (%q, %v, %v)", v, ok, err)
	}
}

func TestFilePreferencesConcurrentWriters(t *testing.T) {
	dir := t.TempDir()

	// Separate instances share only the file, like separate processes would
	var wg sync.WaitGroup
	written := map[string]bool{}
	for i := 0; i < 8; i++ {
		value := fmt.Sprintf("value-%d", i)
		written[value] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := NewFilePreferences(dir).Set("k", value); err != nil {
				t.Errorf("Set() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, ok, err := NewFilePreferences(dir).Get("k")
	if err != nil {
		t.Fatalf("Get() after concurrent writes failed: %v", err)
	}
	if !ok || !written[got] {
		t.Errorf("Get() = %q, expected one of the written values", got)
	}
}

func TestMemoryPreferences(t *testing.T) {
	prefs := NewMemoryPreferences()

	if _, ok, _ := prefs.Get("k"); ok {
		t.Error("Expected empty store")
	}
	prefs.Set("k", "v")
	if v, ok, err := prefs.Get("k"); err != nil || !ok || v != "v" {
		t.Errorf("Get() = (%q, %v, %v)", v, ok, err)
	}
}
