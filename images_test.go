package main

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/c3mb0/mindset-mcp/pkg/compose"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

func writeImage(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewImageLibraryEmptyDir(t *testing.T) {
	lib, err := newImageLibrary("")
	if err != nil || lib != nil {
		t.Fatalf("expected nil library, got %v, %v", lib, err)
	}
	if _, err := lib.Load("x.png"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("nil library Load: %v", err)
	}
}

func TestNewImageLibraryRejectsFile(t *testing.T) {
	root := t.TempDir()
	writeImage(t, root, "a.png", []byte("x"))
	if _, err := newImageLibrary(filepath.Join(root, "a.png")); err == nil {
		t.Fatalf("expected error for non-directory")
	}
}

func TestImageDiscoverPicksLexicalFirst(t *testing.T) {
	root := t.TempDir()
	writeImage(t, root, "b/stuck.png", []byte("b"))
	writeImage(t, root, "a/stuck.jpg", []byte("a"))
	writeImage(t, root, "a/stuck.txt", []byte("nope"))
	lib, err := newImageLibrary(root)
	if err != nil {
		t.Fatal(err)
	}

	got, err := lib.Discover(state.Stuck)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a/stuck.jpg" {
		t.Fatalf("Discover = %q", got)
	}
	if _, err := lib.Discover(state.Overwhelmed); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImageResolve(t *testing.T) {
	root := t.TempDir()
	writeImage(t, root, "states/ready_to_act.webp", []byte("r"))
	lib, err := newImageLibrary(root)
	if err != nil {
		t.Fatal(err)
	}

	if got, err := lib.Resolve("states/ready_to_act.webp"); err != nil || got != "states/ready_to_act.webp" {
		t.Fatalf("plain resolve = %q, %v", got, err)
	}
	if got, err := lib.Resolve("/states/../states/ready_to_act.webp"); err != nil || got != "states/ready_to_act.webp" {
		t.Fatalf("cleaned resolve = %q, %v", got, err)
	}
	if got, err := lib.Resolve("**/ready_*.webp"); err != nil || got != "states/ready_to_act.webp" {
		t.Fatalf("glob resolve = %q, %v", got, err)
	}
	if _, err := lib.Resolve("../outside.png"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("escape attempt: %v", err)
	}
	if _, err := lib.Resolve("states"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("directory ref: %v", err)
	}
}

func TestImageLoad(t *testing.T) {
	root := t.TempDir()
	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	writeImage(t, root, "overwhelmed.png", data)
	writeImage(t, root, "huge.png", make([]byte, maxImageBytes+1))
	lib, err := newImageLibrary(root)
	if err != nil {
		t.Fatal(err)
	}

	got, err := lib.Load("overwhelmed.png")
	if err != nil {
		t.Fatal(err)
	}
	if got != base64.StdEncoding.EncodeToString(data) {
		t.Fatalf("unexpected payload %q", got)
	}
	if _, err := lib.Load("huge.png"); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestAttachImages(t *testing.T) {
	root := t.TempDir()
	writeImage(t, root, "img/overwhelmed.png", []byte("o"))
	writeImage(t, root, "custom/focus-1.gif", []byte("f"))
	lib, err := newImageLibrary(root)
	if err != nil {
		t.Fatal(err)
	}

	tpls := compose.DefaultTemplates()
	st := tpls[state.Stuck]
	st.Image = "custom/focus-*.gif"
	tpls[state.Stuck] = st
	rd := tpls[state.ReadyToAct]
	rd.Image = "https://example.com/go.png"
	tpls[state.ReadyToAct] = rd

	out, err := attachImages(tpls, lib)
	if err != nil {
		t.Fatal(err)
	}
	if got := out[state.Overwhelmed].Image; got != "img/overwhelmed.png" {
		t.Fatalf("discovered image = %q", got)
	}
	if got := out[state.Stuck].Image; got != "custom/focus-1.gif" {
		t.Fatalf("glob image = %q", got)
	}
	if got := out[state.ReadyToAct].Image; got != "https://example.com/go.png" {
		t.Fatalf("url image = %q", got)
	}
	if got := out[state.UnclearDirection].Image; got != "" {
		t.Fatalf("expected no image, got %q", got)
	}

	bad := compose.DefaultTemplates()
	b := bad[state.Stuck]
	b.Image = "missing.png"
	bad[state.Stuck] = b
	if _, err := attachImages(bad, lib); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected missing image error, got %v", err)
	}
}
