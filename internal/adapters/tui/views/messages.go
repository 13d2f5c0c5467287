package views

import (
	"context"

	"github.com/atotto/clipboard"

	"memorybank/internal/adapters/cache"
	"memorybank/internal/application/commands"
	"memorybank/internal/domain"
)

// CacheSource reports content cache counters
type CacheSource interface {
	Stats() cache.Stats
}

// Deps are shared by every view
type Deps struct {
	Bank  commands.Bank
	Cache CacheSource // Optional
}

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// background is the context for commands started from the UI
var background = context.Background

// Messages for view switching
type SwitchToDocumentMsg struct {
	Type domain.DocumentType
}

type SwitchToSearchMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToDashboardMsg struct{}

// OpenInVaultMsg asks the app to open a file in Obsidian
type OpenInVaultMsg struct {
	Path string
}

// OpenEditorMsg asks the app to open a file in the user's editor
type OpenEditorMsg struct {
	Path string
}

// ReloadMsg asks the dashboard to reload every document
type ReloadMsg struct{}

type errMsg struct {
	err error
}
