package application

import (
	"errors"
	"strings"
	"testing"

	"memorybank/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "content",
			value:     "# Progress",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "content",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "relativePath",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateDocumentType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.DocumentType
		wantErr string
	}{
		{name: "known key", input: "progress", want: domain.DocProgress},
		{name: "file name", input: "techContext.md", want: domain.DocTechContext},
		{name: "empty", input: "", wantErr: "document type is required"},
		{name: "unknown", input: "roadmap", wantErr: "expected one of projectbrief"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDocumentType("docType", tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrchestrationError_Unwrap(t *testing.T) {
	cause := &domain.ReadError{Code: domain.ReadTimeout, Path: "/bank/progress.md"}
	err := &OrchestrationError{Code: CodeReadFailed, Op: "load", Target: "progress", Err: cause}

	if !errors.Is(err, domain.ErrReadFailed) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	var re *domain.ReadError
	if !errors.As(err, &re) || re.Code != domain.ReadTimeout {
		t.Errorf("expected ReadError cause, got %v", re)
	}
	if CodeOf(err) != CodeReadFailed {
		t.Errorf("CodeOf() = %s", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("expected empty code for foreign errors")
	}
}
