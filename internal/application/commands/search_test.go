package commands

import (
	"context"
	"testing"

	"memorybank/internal/domain"
)

func TestFuzzyScore(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		query     string
		wantScore int
		wantMin   int // use this for relative comparisons
	}{
		{
			name:      "exact match",
			target:    "Progress",
			query:     "Progress",
			wantScore: 150, // 100 for contains + 50 for prefix
		},
		{
			name:      "prefix match",
			target:    "Progress log",
			query:     "Progress",
			wantScore: 150,
		},
		{
			name:      "substring match",
			target:    "Current progress",
			query:     "progress",
			wantScore: 100, // contains only
		},
		{
			name:    "fuzzy match at start",
			target:  "Tech Context",
			query:   "tc",
			wantMin: 20,
		},
		{
			name:      "no match",
			target:    "Progress",
			query:     "xyz",
			wantScore: 0,
		},
		{
			name:      "empty query",
			target:    "Progress",
			query:     "",
			wantScore: 0,
		},
		{
			name:    "case insensitive",
			target:  "SYSTEM PATTERNS",
			query:   "patterns",
			wantMin: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FuzzyScore(tt.target, tt.query)

			if tt.wantScore > 0 {
				if score != tt.wantScore {
					t.Errorf("expected score %d, got %d", tt.wantScore, score)
				}
			} else if tt.wantMin > 0 {
				if score < tt.wantMin {
					t.Errorf("expected score >= %d, got %d", tt.wantMin, score)
				}
			} else {
				if score != 0 {
					t.Errorf("expected score 0, got %d", score)
				}
			}
		})
	}
}

func TestFuzzyScore_Ordering(t *testing.T) {
	query := "context"

	exactScore := FuzzyScore("context", query)
	prefixScore := FuzzyScore("context switch", query)
	containsScore := FuzzyScore("active context", query)
	fuzzyScore := FuzzyScore("c.o.n.t.e.x.t", query)

	if exactScore < prefixScore {
		t.Errorf("exact match should score >= prefix: %d < %d", exactScore, prefixScore)
	}
	if prefixScore < containsScore {
		t.Errorf("prefix match should score >= contains: %d < %d", prefixScore, containsScore)
	}
	if containsScore <= fuzzyScore {
		t.Errorf("contains match should score higher than fuzzy: %d <= %d", containsScore, fuzzyScore)
	}
}

func TestSearchCommand(t *testing.T) {
	bank := newFakeBank()
	bank.records[domain.DocActiveContext] = &domain.DocumentRecord{
		Type:    domain.DocActiveContext,
		Content: "# Active Context\n\nWorking on the streaming reader\nnothing else",
	}
	bank.records[domain.DocProgress] = &domain.DocumentRecord{
		Type:    domain.DocProgress,
		Content: "Reader done\n",
	}

	results, err := NewSearchCommand(bank, "reader").Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	// Prefix match ranks first
	if results[0].Type != domain.DocProgress || results[0].Line != 1 {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Line != 3 || results[1].MatchedText != "Working on the streaming reader" {
		t.Errorf("unexpected second result %+v", results[1])
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted by score at index %d", i)
		}
	}
}

func TestSearchCommand_ShortQuery(t *testing.T) {
	results, err := NewSearchCommand(newFakeBank(), "r").Execute(context.Background())
	if err != nil || results != nil {
		t.Errorf("expected no results and no error, got %v, %v", results, err)
	}
}
