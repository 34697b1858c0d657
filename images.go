package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c3mb0/mindset-mcp/pkg/compose"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

const imageExtensions = "{png,jpg,jpeg,gif,webp}"

// imageLibrary resolves file image references against a directory.
type imageLibrary struct {
	fsys fs.FS
}

// newImageLibrary returns nil when dir is empty; a nil library resolves no
// file references.
func newImageLibrary(dir string) (*imageLibrary, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("images dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("images dir %s is not a directory", dir)
	}
	return &imageLibrary{fsys: os.DirFS(dir)}, nil
}

// find returns the first path, in lexical order, matching pattern.
func (l *imageLibrary) find(pattern string) (string, error) {
	matches, err := doublestar.Glob(l.fsys, pattern)
	if err != nil {
		return "", fmt.Errorf("image pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, pattern)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Discover finds <state>.<ext> anywhere under the directory.
func (l *imageLibrary) Discover(st state.State) (string, error) {
	return l.find("**/" + string(st) + "." + imageExtensions)
}

// Resolve turns a reference into a concrete relative path. Glob references
// pick their first match.
func (l *imageLibrary) Resolve(ref string) (string, error) {
	ref = strings.TrimPrefix(path.Clean("/"+ref), "/")
	if strings.ContainsAny(ref, "*?[{") {
		return l.find(ref)
	}
	if !fs.ValidPath(ref) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	info, err := fs.Stat(l.fsys, ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrImageNotFound, ref)
	}
	return ref, nil
}

// Load returns the base64 payload of a resolved reference.
func (l *imageLibrary) Load(ref string) (string, error) {
	if l == nil {
		return "", fmt.Errorf("%w: no images dir configured for %s", ErrImageNotFound, ref)
	}
	p, err := l.Resolve(ref)
	if err != nil {
		return "", err
	}
	info, err := fs.Stat(l.fsys, p)
	if err != nil {
		return "", err
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrImageTooLarge, p, info.Size())
	}
	b, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// attachImages fills in missing template images from the library and pins
// glob references to a concrete file. URL references are left alone.
func attachImages(tpls compose.Templates, l *imageLibrary) (compose.Templates, error) {
	if l == nil {
		return tpls, nil
	}
	out := make(compose.Templates, len(tpls))
	for st, tpl := range tpls {
		switch {
		case tpl.Image == "":
			if p, err := l.Discover(st); err == nil {
				tpl.Image = p
			} else if !errors.Is(err, ErrImageNotFound) {
				return nil, err
			}
		case !compose.IsURL(tpl.Image):
			p, err := l.Resolve(tpl.Image)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", st, err)
			}
			tpl.Image = p
		}
		out[st] = tpl
	}
	return out, nil
}
