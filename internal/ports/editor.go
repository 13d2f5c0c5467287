package ports

import "os/exec"

// EditorOpener opens memory bank files in an external editor
type EditorOpener interface {
	// OpenFile opens path in the configured editor and waits for it to exit
	OpenFile(path string) error

	// Command returns the editor process without starting it, for use
	// with bubbletea's ExecProcess
	Command(path string) (*exec.Cmd, error)
}

// VaultOpener hands memory bank files to a note-taking application
type VaultOpener interface {
	OpenFile(path string) error
}
