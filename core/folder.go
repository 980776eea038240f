package core

import (
	"strings"
	"time"
)

// PathSeparator joins folder path segments.
const PathSeparator = "/"

// Folder is a node in the document hierarchy. Path is its key; the root is
// the empty path.
type Folder struct {
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	ParentPath    string    `json:"parentPath"`
	CreatedAt     time.Time `json:"createdAt"`
	DocumentCount int       `json:"documentCount"`
}

// JoinPath returns the path of child name under parent.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + PathSeparator + name
}

// ParentPath returns the parent of path, or "" for top-level folders.
func ParentPath(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

// IsWithin reports whether path equals root or lies beneath it.
func IsWithin(path, root string) bool {
	if root == "" {
		return true
	}
	return path == root || strings.HasPrefix(path, root+PathSeparator)
}
