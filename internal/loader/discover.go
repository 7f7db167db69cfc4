// Package loader discovers the manifest files eligible for identity locking
// under a set of scan roots.
package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// excludedDirs are never descended into during discovery: version control,
// chart/template trees, generated documentation and archived manifests.
var excludedDirs = map[string]bool{
	".git":         true,
	"charts":       true,
	"templates":    true,
	"docs":         true,
	"legacy":       true,
	"archive":      true,
	"node_modules": true,
	"vendor":       true,
}

// Discover walks the given roots and returns the manifest files eligible for
// identity locking, deduplicated and in sorted order. A root may also be a
// single file. Roots that do not exist are skipped, so conventional default
// paths can be passed without checking them first.
func Discover(roots []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if isManifestCandidate(root) && !seen[root] {
				seen[root] = true
				files = append(files, root)
			}
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && excludedDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if isManifestCandidate(path) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", root, walkErr)
		}
	}

	sort.Strings(files)
	return files, nil
}

// isManifestCandidate reports whether a file looks like a concrete manifest:
// a YAML extension, no unresolved templating delimiters, and the apiVersion,
// kind and metadata markers somewhere in the content.
func isManifestCandidate(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if bytes.Contains(data, []byte("{{")) && bytes.Contains(data, []byte("}}")) {
		return false
	}
	return bytes.Contains(data, []byte("apiVersion")) &&
		bytes.Contains(data, []byte("kind")) &&
		bytes.Contains(data, []byte("metadata"))
}
