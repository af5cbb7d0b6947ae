// Package discover walks a directory tree looking for RCS ",v" files and
// keeps the result as a tree so repeated subtree queries don't require
// re-walking the filesystem.
package discover

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Node is one entry in the discovered file tree: either a directory with
// Children, or a leaf file with Path set to the path it was found at.
type Node struct {
	Name            string
	Path            string
	IsFile          bool
	CaseInsensitive bool
	Children        []*Node
}

func (n *Node) stringEqual(s1, s2 string) bool {
	if n.CaseInsensitive {
		return len(s1) == len(s2) && strings.EqualFold(s1, s2)
	}
	return len(s1) == len(s2) && s1 == s2
}

// NewNode creates an empty node. caseInsensitive governs name comparisons
// for every node added beneath it, for filesystems that fold case.
func NewNode(name string, caseInsensitive bool) *Node {
	return &Node{Name: name, CaseInsensitive: caseInsensitive}
}

// AddSubFile registers fullPath (the path to record against the leaf) at
// subPath (a '/'-separated path relative to n), creating intermediate
// directory nodes as needed.
func (n *Node) AddSubFile(fullPath string, subPath string) {
	parts := strings.Split(subPath, "/")
	if len(parts) == 1 {
		for _, c := range n.Children {
			if n.stringEqual(c.Name, parts[0]) {
				return
			}
		}
		n.Children = append(n.Children, &Node{Name: parts[0], IsFile: true, Path: fullPath, CaseInsensitive: n.CaseInsensitive})
		return
	}
	for _, c := range n.Children {
		if n.stringEqual(c.Name, parts[0]) {
			c.AddSubFile(fullPath, strings.Join(parts[1:], "/"))
			return
		}
	}
	child := NewNode(parts[0], n.CaseInsensitive)
	n.Children = append(n.Children, child)
	child.AddSubFile(fullPath, strings.Join(parts[1:], "/"))
}

// AddFile is AddSubFile(path, path): path doubles as both the recorded leaf
// path and the tree location, which is all Scan needs.
func (n *Node) AddFile(path string) {
	n.AddSubFile(path, path)
}

func (n *Node) getChildFiles() []string {
	files := make([]string, 0)
	for _, c := range n.Children {
		if c.IsFile {
			files = append(files, c.Path)
		} else {
			files = append(files, c.getChildFiles()...)
		}
	}
	return files
}

// GetFiles returns every file path recorded under dirName, or under the
// whole tree if dirName is "".
func (n *Node) GetFiles(dirName string) []string {
	files := make([]string, 0)
	if n.Name == "" && dirName == "" {
		return n.getChildFiles()
	}
	parts := strings.Split(dirName, "/")
	if len(parts) == 1 {
		for _, c := range n.Children {
			if n.stringEqual(c.Name, parts[0]) {
				if c.IsFile {
					files = append(files, c.Path)
				} else {
					files = append(files, c.getChildFiles()...)
				}
			}
		}
		return files
	}
	for _, c := range n.Children {
		if n.stringEqual(c.Name, parts[0]) {
			return c.GetFiles(strings.Join(parts[1:], "/"))
		}
	}
	return files
}

// FindFile reports whether fileName was registered anywhere in the tree.
func (n *Node) FindFile(fileName string) bool {
	parts := strings.Split(fileName, "/")
	dir := ""
	if len(parts) > 1 {
		dir = strings.Join(parts[:len(parts)-1], "/")
	}
	for _, f := range n.GetFiles(dir) {
		if n.stringEqual(f, fileName) {
			return true
		}
	}
	return false
}

// Paths returns every discovered file path in the tree, in traversal order.
func (n *Node) Paths() []string {
	return n.GetFiles("")
}

// Scan walks root recursively and records every file ending in ",v" into a
// fresh tree, skipping any whose base name matches one of the exclude glob
// patterns (filepath.Match syntax). Recorded paths are root-relative and
// use forward slashes regardless of OS.
func Scan(root string, caseInsensitive bool, excludes []string) (*Node, error) {
	tree := NewNode("", caseInsensitive)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ",v") {
			return nil
		}
		for _, pat := range excludes {
			if matched, _ := filepath.Match(pat, d.Name()); matched {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		tree.AddFile(filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}
