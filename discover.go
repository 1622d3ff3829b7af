package main

import (
	"os"
	"path/filepath"
	"strings"
)

// discoverFolders walks the mail-folder tree under root and returns the
// relative path of every regular file found. Dot-prefixed entries are pruned
// along with their whole subtree. Symlinks are resolved, so a linked folder
// file or directory is treated like the target it points at; a directory
// already being walked is not entered again, so symlink cycles terminate.
// A missing root is not an error: the account simply has no folders.
func discoverFolders(root string) ([]string, error) {
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return nil, nil
	}
	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visited[real] = true
	}
	var folders []string
	err := walkFolders(root, "", visited, &folders)
	return folders, err
}

func walkFolders(dir, rel string, visited map[string]bool, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		fi, err := os.Stat(full)
		if err != nil {
			// Dangling symlink or a race with deletion; skip it.
			continue
		}
		child := name
		if rel != "" {
			child = filepath.Join(rel, name)
		}
		if fi.IsDir() {
			real, err := filepath.EvalSymlinks(full)
			if err != nil || visited[real] {
				continue
			}
			visited[real] = true
			if err := walkFolders(full, child, visited, out); err != nil {
				return err
			}
			continue
		}
		if fi.Mode().IsRegular() {
			*out = append(*out, child)
		}
	}
	return nil
}
