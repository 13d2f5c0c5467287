// Package obsidian opens memory bank documents through the obsidian:// URI
// scheme.
package obsidian

import (
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"memorybank/internal/domain"
)

// Opener implements ports.VaultOpener. The vault defaults to the memory
// bank root; a bank kept inside a larger vault sets it with WithVault.
type Opener struct {
	vaultPath string
	vaultName string
	launch    func(uri string) error
}

// Option configures an Opener
type Option func(*Opener)

// WithVault sets the Obsidian vault that contains the memory bank
func WithVault(path string) Option {
	return func(o *Opener) {
		o.vaultPath = path
	}
}

// WithLauncher replaces the platform URI handler
func WithLauncher(fn func(uri string) error) Option {
	return func(o *Opener) {
		o.launch = fn
	}
}

// NewOpener creates an opener for files under root
func NewOpener(root string, opts ...Option) *Opener {
	o := &Opener{vaultPath: root, launch: openURI}
	for _, opt := range opts {
		opt(o)
	}
	o.vaultPath = filepath.Clean(o.vaultPath)
	o.vaultName = filepath.Base(o.vaultPath)
	return o
}

// OpenFile opens a file in Obsidian
func (o *Opener) OpenFile(filePath string) error {
	uri, err := o.BuildURI(filePath)
	if err != nil {
		return err
	}
	if err := o.launch(uri); err != nil {
		return fmt.Errorf("failed to open %s: %w", uri, err)
	}
	return nil
}

// BuildURI constructs the obsidian:// URI for a file inside the vault
func (o *Opener) BuildURI(filePath string) (string, error) {
	rel, err := domain.Sanitize(filePath, o.vaultPath)
	if err != nil {
		return "", fmt.Errorf("file is outside the vault: %w", err)
	}
	if rel == "." {
		return "", fmt.Errorf("not a file: %s", filePath)
	}

	// Obsidian expects forward slashes and no extension for notes
	rel = strings.TrimSuffix(filepath.ToSlash(rel), ".md")

	return fmt.Sprintf("obsidian://open?vault=%s&file=%s",
		url.PathEscape(o.vaultName),
		url.PathEscape(rel),
	), nil
}

func openURI(uri string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux":
		cmd = exec.Command("xdg-open", uri)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Run()
}
