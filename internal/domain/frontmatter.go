package domain

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaKind selects the rules applied to a document's front-matter
type SchemaKind int

const (
	SchemaDefault SchemaKind = iota
	SchemaBrief
	SchemaContext
	SchemaPatterns
	SchemaTech
	SchemaProgress
)

// String returns the value written in the front-matter "type" field
func (k SchemaKind) String() string {
	switch k {
	case SchemaBrief:
		return "brief"
	case SchemaContext:
		return "context"
	case SchemaPatterns:
		return "patterns"
	case SchemaTech:
		return "tech"
	case SchemaProgress:
		return "progress"
	default:
		return "default"
	}
}

// ParseSchemaKind maps a "type" value to its schema, falling back to
// SchemaDefault for anything unknown.
func ParseSchemaKind(s string) SchemaKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brief", "projectbrief":
		return SchemaBrief
	case "context", "productcontext", "activecontext":
		return SchemaContext
	case "patterns", "systempatterns":
		return SchemaPatterns
	case "tech", "techcontext":
		return SchemaTech
	case "progress":
		return SchemaProgress
	default:
		return SchemaDefault
	}
}

// ProgressStates are the accepted values of "status" in a progress header
var ProgressStates = []string{"planned", "in-progress", "blocked", "done"}

const dateLayout = "2006-01-02"

// Schema lists the checks for one SchemaKind
type Schema struct {
	Kind     SchemaKind
	Required []string
	Dates    []string            // Fields that must hold YYYY-MM-DD dates
	Lists    []string            // Fields that must be lists of strings
	Enums    map[string][]string // Field -> allowed values
}

// SchemaFor returns the rules for kind
func SchemaFor(kind SchemaKind) Schema {
	base := Schema{
		Kind:     kind,
		Required: []string{"title"},
		Dates:    []string{"created", "updated"},
		Lists:    []string{"tags"},
	}

	switch kind {
	case SchemaBrief:
		base.Required = append(base.Required, "created")
		base.Lists = append(base.Lists, "goals")
	case SchemaContext, SchemaPatterns:
		base.Required = append(base.Required, "updated")
	case SchemaTech:
		base.Required = append(base.Required, "updated")
		base.Lists = append(base.Lists, "stack")
	case SchemaProgress:
		base.Required = append(base.Required, "updated", "status")
		base.Enums = map[string][]string{"status": ProgressStates}
	}
	return base
}

// Validate checks fields against the schema and returns every violation
func (s Schema) Validate(fields map[string]any) []string {
	var problems []string

	for _, name := range s.Required {
		v, ok := fields[name]
		if !ok || v == nil || (isString(v) && strings.TrimSpace(v.(string)) == "") {
			problems = append(problems, fmt.Sprintf("%s is required", name))
		}
	}

	for _, name := range s.Dates {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		if !isDate(v) {
			problems = append(problems, fmt.Sprintf("%s must be a date (YYYY-MM-DD), got %v", name, v))
		}
	}

	for _, name := range s.Lists {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		if !isStringList(v) {
			problems = append(problems, fmt.Sprintf("%s must be a list of strings", name))
		}
	}

	names := make([]string, 0, len(s.Enums))
	for name := range s.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		str, isStr := v.(string)
		if !isStr || !slices.Contains(s.Enums[name], str) {
			problems = append(problems, fmt.Sprintf("%s must be one of %s, got %v",
				name, strings.Join(s.Enums[name], ", "), v))
		}
	}

	return problems
}

// FrontMatter is a document split into its header and body
type FrontMatter struct {
	Present bool
	Raw     string
	Fields  map[string]any
	Body    string
}

var errUnterminated = errors.New("front-matter block is not terminated")

// ParseFrontMatter splits a leading "---" YAML block from content.
// A document without a header yields Present == false and no error.
func ParseFrontMatter(content string) (fm FrontMatter, err error) {
	text := strings.TrimPrefix(content, "\ufeff")
	fm.Body = content

	first, rest, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimRight(first, "\r") != "---" {
		return fm, nil
	}

	fm.Present = true
	var header []string
	closed := false
	for {
		line, tail, more := strings.Cut(rest, "\n")
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "---" || trimmed == "..." {
			closed = true
			rest = tail
			if !more {
				rest = ""
			}
			break
		}
		header = append(header, line)
		if !more {
			break
		}
		rest = tail
	}
	if !closed {
		return fm, errUnterminated
	}

	fm.Raw = strings.Join(header, "\n")
	fm.Body = strings.TrimLeft(rest, "\r\n")

	defer func() {
		if r := recover(); r != nil {
			fm.Fields = nil
			err = fmt.Errorf("decode front-matter: %v", r)
		}
	}()

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(fm.Raw), &fields); err != nil {
		return fm, fmt.Errorf("decode front-matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fm.Fields = fields
	return fm, nil
}

// Validation is the outcome of checking one document's header
type Validation struct {
	Status   ValidationStatus
	Errors   []string
	Metadata map[string]any
	Body     string
	Schema   SchemaKind
}

// ValidateContent parses and validates a document's header. It never fails:
// malformed headers downgrade the status instead.
func ValidateContent(content string) Validation {
	fm, err := ParseFrontMatter(content)
	if err != nil {
		return Validation{
			Status: StatusInvalid,
			Errors: []string{err.Error()},
			Body:   fm.Body,
		}
	}
	if !fm.Present {
		return Validation{Status: StatusUnchecked, Body: fm.Body}
	}

	kind := SchemaDefault
	if t, ok := fm.Fields["type"].(string); ok {
		kind = ParseSchemaKind(t)
	}

	problems := SchemaFor(kind).Validate(fm.Fields)
	status := StatusValid
	if len(problems) > 0 {
		status = StatusInvalid
	}
	return Validation{
		Status:   status,
		Errors:   problems,
		Metadata: fm.Fields,
		Body:     fm.Body,
		Schema:   kind,
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isDate(v any) bool {
	switch d := v.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(dateLayout, d)
		return err == nil
	default:
		return false
	}
}

func isStringList(v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if !isString(item) {
			return false
		}
	}
	return true
}
