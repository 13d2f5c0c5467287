package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	t.Run("no header", func(t *testing.T) {
		fm, err := ParseFrontMatter("# Title\n\nbody\n")
		require.NoError(t, err)
		assert.False(t, fm.Present)
		assert.Equal(t, "# Title\n\nbody\n", fm.Body)
	})

	t.Run("header and body", func(t *testing.T) {
		fm, err := ParseFrontMatter("---\ntitle: Brief\ntags:\n  - a\n---\n\n# Brief\n")
		require.NoError(t, err)
		assert.True(t, fm.Present)
		assert.Equal(t, "Brief", fm.Fields["title"])
		assert.Equal(t, "# Brief\n", fm.Body)
	})

	t.Run("crlf line endings", func(t *testing.T) {
		fm, err := ParseFrontMatter("---\r\ntitle: Brief\r\n---\r\nbody")
		require.NoError(t, err)
		assert.Equal(t, "Brief", fm.Fields["title"])
		assert.Equal(t, "body", fm.Body)
	})

	t.Run("empty header", func(t *testing.T) {
		fm, err := ParseFrontMatter("---\n---\nbody")
		require.NoError(t, err)
		assert.True(t, fm.Present)
		assert.Empty(t, fm.Fields)
	})

	t.Run("unterminated", func(t *testing.T) {
		_, err := ParseFrontMatter("---\ntitle: Brief\nbody")
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseFrontMatter("---\ntitle: [unclosed\n---\nbody")
		assert.Error(t, err)
	})
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStatus ValidationStatus
		wantSchema SchemaKind
		wantErrors int
	}{
		{
			name:       "no header is unchecked",
			content:    "# Notes\n",
			wantStatus: StatusUnchecked,
		},
		{
			name:       "valid progress",
			content:    "---\ntitle: Progress\ntype: progress\nupdated: 2026-10-14\nstatus: in-progress\n---\nbody",
			wantStatus: StatusValid,
			wantSchema: SchemaProgress,
		},
		{
			name:       "progress with bad status",
			content:    "---\ntitle: Progress\ntype: progress\nupdated: 2026-10-14\nstatus: someday\n---\nbody",
			wantStatus: StatusInvalid,
			wantSchema: SchemaProgress,
			wantErrors: 1,
		},
		{
			name:       "unknown type falls back to default schema",
			content:    "---\ntitle: Anything\ntype: recipe\n---\nbody",
			wantStatus: StatusValid,
			wantSchema: SchemaDefault,
		},
		{
			name:       "missing type uses default schema",
			content:    "---\ntitle: Anything\n---\nbody",
			wantStatus: StatusValid,
			wantSchema: SchemaDefault,
		},
		{
			name:       "every violation is reported",
			content:    "---\ntype: brief\ncreated: yesterday\ntags: nope\n---\nbody",
			wantStatus: StatusInvalid,
			wantSchema: SchemaBrief,
			wantErrors: 3,
		},
		{
			name:       "malformed header is invalid, not fatal",
			content:    "---\ntitle: [oops\n---\nbody",
			wantStatus: StatusInvalid,
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateContent(tt.content)
			assert.Equal(t, tt.wantStatus, v.Status)
			assert.Equal(t, tt.wantSchema, v.Schema)
			assert.Len(t, v.Errors, tt.wantErrors, "errors: %v", v.Errors)
		})
	}
}

func TestParseSchemaKind_RoundTripsNames(t *testing.T) {
	for _, k := range []SchemaKind{SchemaBrief, SchemaContext, SchemaPatterns, SchemaTech, SchemaProgress} {
		assert.Equal(t, k, ParseSchemaKind(k.String()))
	}
	assert.Equal(t, SchemaDefault, ParseSchemaKind(""))
}
