// Package workdir resolves the notif project directory, supporting
// redirection via .notif-root files.
package workdir

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	rootFile = ".notif-root"
	dataDir  = ".notif"
)

// ResolveBaseDir walks up from dir to the nearest directory that holds a
// .notif directory or a .notif-root file. A .notif-root file redirects to the
// path it contains, relative paths resolving against the file's directory.
// Without either marker, dir is returned unchanged.
func ResolveBaseDir(dir string) string {
	for cur := filepath.Clean(dir); ; {
		if target, ok := readRootFile(cur); ok {
			return target
		}
		if info, err := os.Stat(filepath.Join(cur, dataDir)); err == nil && info.IsDir() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

func readRootFile(dir string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(dir, rootFile))
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), true
}
