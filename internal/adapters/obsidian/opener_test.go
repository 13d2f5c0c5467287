package obsidian

import (
	"errors"
	"testing"
)

func TestNewOpener_DerivesVaultName(t *testing.T) {
	tests := []struct {
		name          string
		root          string
		opts          []Option
		wantVaultName string
	}{
		{
			name:          "bank root is the vault",
			root:          "/home/dev/project/memory-bank",
			wantVaultName: "memory-bank",
		},
		{
			name:          "bank inside a vault",
			root:          "/home/dev/Notes/project/memory-bank",
			opts:          []Option{WithVault("/home/dev/Notes")},
			wantVaultName: "Notes",
		},
		{
			name:          "trailing separator",
			root:          "/home/dev/My Vault/",
			wantVaultName: "My Vault",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := NewOpener(tt.root, tt.opts...)
			if opener.vaultName != tt.wantVaultName {
				t.Errorf("vaultName = %q, want %q", opener.vaultName, tt.wantVaultName)
			}
		})
	}
}

func TestBuildURI(t *testing.T) {
	tests := []struct {
		name     string
		vault    string
		filePath string
		wantURI  string
		wantErr  bool
	}{
		{
			name:     "document at the root",
			vault:    "/home/dev/memory-bank",
			filePath: "/home/dev/memory-bank/progress.md",
			wantURI:  "obsidian://open?vault=memory-bank&file=progress",
		},
		{
			name:     "nested file",
			vault:    "/home/dev/Notes",
			filePath: "/home/dev/Notes/project/memory-bank/activeContext.md",
			wantURI:  "obsidian://open?vault=Notes&file=project%2Fmemory-bank%2FactiveContext",
		},
		{
			name:     "spaces are escaped",
			vault:    "/home/dev/My Vault",
			filePath: "/home/dev/My Vault/tech notes/techContext.md",
			wantURI:  "obsidian://open?vault=My%20Vault&file=tech%20notes%2FtechContext",
		},
		{
			name:     "non-markdown keeps its extension",
			vault:    "/home/dev/memory-bank",
			filePath: "/home/dev/memory-bank/diagram.png",
			wantURI:  "obsidian://open?vault=memory-bank&file=diagram.png",
		},
		{
			name:     "file outside vault",
			vault:    "/home/dev/memory-bank",
			filePath: "/home/dev/other/file.md",
			wantErr:  true,
		},
		{
			name:     "traversal",
			vault:    "/home/dev/memory-bank",
			filePath: "/home/dev/memory-bank/../secrets.md",
			wantErr:  true,
		},
		{
			name:     "vault root itself",
			vault:    "/home/dev/memory-bank",
			filePath: "/home/dev/memory-bank",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := NewOpener(tt.vault)
			gotURI, err := opener.BuildURI(tt.filePath)

			if (err != nil) != tt.wantErr {
				t.Errorf("BuildURI() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if gotURI != tt.wantURI {
				t.Errorf("BuildURI() = %q, want %q", gotURI, tt.wantURI)
			}
		})
	}
}

func TestOpenFile_UsesLauncher(t *testing.T) {
	var got string
	opener := NewOpener("/home/dev/memory-bank", WithLauncher(func(uri string) error {
		got = uri
		return nil
	}))

	if err := opener.OpenFile("/home/dev/memory-bank/progress.md"); err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if got != "obsidian://open?vault=memory-bank&file=progress" {
		t.Errorf("launched %q", got)
	}
}

func TestOpenFile_WrapsLauncherError(t *testing.T) {
	boom := errors.New("no handler")
	opener := NewOpener("/home/dev/memory-bank", WithLauncher(func(string) error { return boom }))

	err := opener.OpenFile("/home/dev/memory-bank/progress.md")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped launcher error, got %v", err)
	}

	called := false
	opener = NewOpener("/home/dev/memory-bank", WithLauncher(func(string) error { called = true; return nil }))
	if err := opener.OpenFile("/etc/passwd"); err == nil || called {
		t.Error("expected files outside the vault to be rejected before launching")
	}
}
