//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
)

const colorsYAML = `
- id: "red"
  text: red
- id: "rebeccapurple"
  text: rebeccapurple
- id: "orange"
  text: orange
- id: "olive"
  text: olive
`

// CreateTestWorkspace creates the directory the app runs in
func (tf *Session) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// WriteDataset writes a dataset file into the workspace
func (tf *Session) WriteDataset(name, content string) (string, error) {
	path := filepath.Join(tf.workspace, name)
	return path, os.WriteFile(path, []byte(content), 0644)
}

// CreateTestRepo creates a directory that looks like a git repository
func (tf *Session) CreateTestRepo(name string) (string, error) {
	repoPath := filepath.Join(tf.workspace, name)
	return repoPath, os.MkdirAll(filepath.Join(repoPath, ".git"), 0755)
}
