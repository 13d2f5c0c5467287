package domain

import (
	"path/filepath"
	"strings"
)

// Sanitize validates a candidate path and returns it normalized.
//
// Without an allowed root the path must be relative; the cleaned relative
// path is returned. With a root, the candidate is resolved against it and
// must stay inside it; the result is relative to the root ("." for the root
// itself). Traversal segments and NUL bytes are rejected in both modes.
//
// Sanitize performs no I/O, so symlinks inside the root are not resolved.
func Sanitize(path, allowedRoot string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &PathValidationError{Code: PathEmpty, Path: path, Reason: "path is empty"}
	}
	if strings.ContainsRune(path, 0) {
		return "", &PathValidationError{Code: PathNullByte, Path: path, Reason: "path contains a null byte"}
	}
	if hasTraversal(path) {
		return "", &PathValidationError{Code: PathTraversal, Path: path, Reason: "path contains a traversal segment"}
	}

	if allowedRoot == "" {
		if filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
			return "", &PathValidationError{Code: PathAbsolute, Path: path, Reason: "absolute path without an allowed root"}
		}
		return filepath.Clean(path), nil
	}

	root, err := filepath.Abs(allowedRoot)
	if err != nil {
		return "", &PathValidationError{Code: PathOutsideRoot, Path: path, Reason: "allowed root cannot be resolved"}
	}

	var candidate string
	if filepath.IsAbs(path) {
		candidate = filepath.Clean(path)
	} else {
		candidate = filepath.Join(root, path)
	}

	if !within(root, candidate) {
		return "", &PathValidationError{Code: PathOutsideRoot, Path: path, Reason: "path resolves outside the allowed root"}
	}

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return "", &PathValidationError{Code: PathOutsideRoot, Path: path, Reason: "path resolves outside the allowed root"}
	}
	return rel, nil
}

// SafeJoin sanitizes path against root and returns the absolute result
func SafeJoin(root, path string) (string, error) {
	rel, err := Sanitize(path, root)
	if err != nil {
		return "", err
	}
	return ResolveUnder(root, rel)
}

// ResolveUnder joins a path returned by Sanitize back onto its root
func ResolveUnder(root, rel string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, rel), nil
}

// hasTraversal reports whether any segment of p is "..", using both
// separators so Windows style input is caught on every platform.
func hasTraversal(p string) bool {
	segments := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, seg := range segments {
		if seg == ".." {
			return true
		}
	}
	return false
}

func within(root, candidate string) bool {
	if candidate == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(candidate, prefix)
}
