// Package output serializes navigation trees.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/docnav/internal/navtree"
	"github.com/goccy/go-json"
)

// Marshal renders tree as indented JSON with a trailing newline.
func Marshal(tree *navtree.TreeNode) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("marshal tree: nil tree")
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}
	return append(data, '\n'), nil
}

// Encode writes tree to w as indented JSON.
func Encode(w io.Writer, tree *navtree.TreeNode) error {
	data, err := Marshal(tree)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes tree to path. Parent directories are created, and the
// file is replaced atomically so readers never see a partial tree.
func WriteFile(path string, tree *navtree.TreeNode) (err error) {
	data, err := Marshal(tree)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docnav-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
