// Package content models a notebook source tree as an ordered tree of nodes.
//
// The classifier inspects one filesystem entry at a time: directories become
// Directory nodes wrapping their classified children, notebook files become
// Notebook leaves with the output filename already rewritten, and everything
// else is excluded. Classifying the same unchanged tree twice yields identical
// structures; listing order on index pages depends on that.
package content

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	apperrors "nbexport/internal/errors"
	"nbexport/internal/logfields"
)

// NodeType distinguishes the two node variants.
type NodeType string

const (
	TypeDirectory NodeType = "directory"
	TypeNotebook  NodeType = "notebook"
)

// NotebookExt is the source extension that marks a file as renderable.
const NotebookExt = ".ipynb"

// OutputExt is the extension substituted on notebook output paths.
const OutputExt = ".html"

// Node is one entry in the content tree.
//
// For directories, Name is the directory's base name and Path is the
// slash-separated path relative to the export root (empty for the root
// itself). For notebooks, Name is the output filename (stem + ".html") and
// Path is the output path relative to the export root. Children is populated
// for directories only and is sorted ascending by Name.
type Node struct {
	Type     NodeType `json:"type"`
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Children []*Node  `json:"content,omitempty"`
}

// IsDirectory reports whether the node is a directory.
func (n *Node) IsDirectory() bool { return n.Type == TypeDirectory }

// IsNotebook reports whether the node is a notebook leaf.
func (n *Node) IsNotebook() bool { return n.Type == TypeNotebook }

// SourcePath returns the notebook's source path relative to the export root,
// inverting the output-path rewrite. Only meaningful for notebook nodes.
func (n *Node) SourcePath() string {
	return strings.TrimSuffix(n.Path, OutputExt) + NotebookExt
}

// Classify inspects a single filesystem entry and returns its content node, or
// nil when the entry does not contribute to the tree (non-notebook files,
// unreadable entries, broken symlinks). Directories are classified recursively
// with unclassifiable children filtered out; an empty directory is still a
// valid Directory node.
func Classify(entryPath, root string) *Node {
	info, err := os.Stat(entryPath)
	if err != nil {
		slog.Warn("Skipping unreadable entry", logfields.Path(entryPath), logfields.Error(err))
		return nil
	}

	if info.IsDir() {
		entries, err := os.ReadDir(entryPath)
		if err != nil {
			slog.Warn("Skipping unreadable directory", logfields.Path(entryPath), logfields.Error(err))
			return nil
		}
		children := make([]*Node, 0, len(entries))
		for _, entry := range entries {
			if child := Classify(filepath.Join(entryPath, entry.Name()), root); child != nil {
				children = append(children, child)
			}
		}
		// Notebook leaves carry rewritten names, so directory-listing order is
		// not enough; resort by node name to keep index listings deterministic.
		slices.SortStableFunc(children, func(a, b *Node) int {
			return strings.Compare(a.Name, b.Name)
		})
		return &Node{
			Type:     TypeDirectory,
			Name:     info.Name(),
			Path:     relativeTo(entryPath, root),
			Children: children,
		}
	}

	// Exact-case match: the output rewrite appends the lowercase extension
	// back when inverting to the source path, so a case-folded match would
	// classify files whose reconstructed source path does not exist.
	if filepath.Ext(entryPath) == NotebookExt {
		stem := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
		outputName := stem + OutputExt
		rel := relativeTo(entryPath, root)
		return &Node{
			Type: TypeNotebook,
			Name: outputName,
			Path: path.Join(path.Dir(rel), outputName),
		}
	}

	return nil
}

// ClassifyDir models a single directory without descending: direct children
// only, subdirectories as Directory nodes with empty child lists. The export
// driver uses this so that at any moment only the directory being processed
// and its direct children are live; subtrees are modeled when reached.
// Unlistable subdirectories are excluded, matching the classifier contract.
// Returns nil when dirPath itself cannot be listed.
func ClassifyDir(dirPath, root string) *Node {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		slog.Warn("Skipping unreadable directory", logfields.Path(dirPath), logfields.Error(err))
		return nil
	}

	children := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		full := filepath.Join(dirPath, entry.Name())
		info, err := os.Stat(full)
		if err != nil {
			slog.Warn("Skipping unreadable entry", logfields.Path(full), logfields.Error(err))
			continue
		}
		if info.IsDir() {
			if _, err := os.ReadDir(full); err != nil {
				slog.Warn("Skipping unreadable directory", logfields.Path(full), logfields.Error(err))
				continue
			}
			children = append(children, &Node{
				Type: TypeDirectory,
				Name: info.Name(),
				Path: relativeTo(full, root),
			})
			continue
		}
		if node := Classify(full, root); node != nil {
			children = append(children, node)
		}
	}
	slices.SortStableFunc(children, func(a, b *Node) int {
		return strings.Compare(a.Name, b.Name)
	})

	var name string
	if info, err := os.Stat(dirPath); err == nil {
		name = info.Name()
	} else {
		name = filepath.Base(dirPath)
	}
	return &Node{
		Type:     TypeDirectory,
		Name:     name,
		Path:     relativeTo(dirPath, root),
		Children: children,
	}
}

// BuildTree classifies the export root itself and returns its Directory node.
// A root that does not exist or is not a directory is a caller contract
// violation and yields an invalid-root error before any page is produced.
func BuildTree(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperrors.InvalidRoot(root, err)
	}
	if !info.IsDir() {
		return nil, apperrors.InvalidRoot(root, nil)
	}
	node := Classify(root, root)
	if node == nil || !node.IsDirectory() {
		return nil, apperrors.InvalidRoot(root, nil)
	}
	return node, nil
}

// ValidateRoot checks the export-root caller contract without building the
// tree: the root must exist, be a directory, and be listable.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return apperrors.InvalidRoot(root, err)
	}
	if !info.IsDir() {
		return apperrors.InvalidRoot(root, nil)
	}
	if _, err := os.ReadDir(root); err != nil {
		return apperrors.InvalidRoot(root, err)
	}
	return nil
}

// relativeTo expresses target relative to root using forward slashes.
// The root itself maps to the empty string.
func relativeTo(target, root string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
