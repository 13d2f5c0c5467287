package application

import (
	"fmt"
	"strings"

	"memorybank/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "docType" -> "document type")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"docType":      "document type",
		"relativePath": "relative path",
		"content":      "content",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateDocumentType parses name as a document type.
// Returns a ValidationError listing the known types if it is not one.
func ValidateDocumentType(fieldName, name string) (domain.DocumentType, error) {
	if err := ValidateRequired(fieldName, name); err != nil {
		return 0, err
	}
	dt, err := domain.ParseDocumentType(name)
	if err != nil {
		known := make([]string, 0, len(domain.AllDocumentTypes()))
		for _, t := range domain.AllDocumentTypes() {
			known = append(known, t.String())
		}
		return 0, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("unknown %s %q (expected one of %s)", formatFieldName(fieldName), name, strings.Join(known, ", ")),
		}
	}
	return dt, nil
}
