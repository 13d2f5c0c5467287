package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"memorybank/internal/domain"
)

// CheckHealth verifies the root and every document on disk. Each problem
// is reported as its own issue; the check itself never fails.
func (o *Orchestrator) CheckHealth(ctx context.Context) domain.HealthCheckResult {
	if issue := o.checkDir(ctx, o.root, "memory bank root"); issue != "" {
		// Nothing under a missing root can be present
		return domain.HealthCheckResult{
			Issues:  []string{issue},
			Summary: "memory bank root is unavailable",
		}
	}

	var issues []string
	for _, dt := range domain.AllDocumentTypes() {
		abs, err := o.pathFor(dt)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: invalid path: %v", dt.Title(), err))
			continue
		}
		if issue := o.checkDir(ctx, filepath.Dir(abs), dt.Title()+" directory"); issue != "" {
			issues = append(issues, issue)
			continue
		}
		if issue := o.checkFile(ctx, abs, dt.Title()); issue != "" {
			issues = append(issues, issue)
		}
	}

	if len(issues) == 0 {
		return domain.HealthCheckResult{
			IsHealthy: true,
			Summary:   fmt.Sprintf("all %d documents present", len(domain.AllDocumentTypes())),
		}
	}
	return domain.HealthCheckResult{
		Issues:  issues,
		Summary: fmt.Sprintf("%d issue(s) found", len(issues)),
	}
}

func (o *Orchestrator) checkDir(ctx context.Context, path, what string) string {
	info, err := o.fs.Stat(ctx, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("%s %s does not exist", what, path)
	case err != nil:
		return fmt.Sprintf("%s %s cannot be checked: %v", what, path, err)
	case !info.IsDir:
		return fmt.Sprintf("%s %s is not a directory", what, path)
	}
	return ""
}

func (o *Orchestrator) checkFile(ctx context.Context, path, what string) string {
	info, err := o.fs.Stat(ctx, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("%s file %s is missing", what, path)
	case err != nil:
		return fmt.Sprintf("%s file %s cannot be checked: %v", what, path, err)
	case info.IsDir:
		return fmt.Sprintf("%s file %s is a directory", what, path)
	case !info.Regular:
		return fmt.Sprintf("%s file %s is not a regular file", what, path)
	}
	return ""
}
