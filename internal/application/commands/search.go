package commands

import (
	"context"
	"slices"
	"strings"

	"memorybank/internal/domain"
)

// MaxSearchResults caps the number of results a search returns
const MaxSearchResults = 50

// SearchResult is one matching title or body line
type SearchResult struct {
	Type        domain.DocumentType
	Title       string
	Line        int // 1-based body line, 0 for a title match
	MatchedText string
	Score       int
}

// SearchCommand searches document titles and bodies
type SearchCommand struct {
	bank  Bank
	Query string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(bank Bank, query string) *SearchCommand {
	return &SearchCommand{
		bank:  bank,
		Query: query,
	}
}

// Execute runs the search command and returns scored, sorted results.
// Titles match fuzzily; body lines must contain the query.
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	query := strings.TrimSpace(c.Query)
	if len(query) < 2 {
		return nil, nil
	}
	if err := requireInitialized(c.bank, "search", query); err != nil {
		return nil, err
	}

	var results []SearchResult
	for _, rec := range c.bank.GetAllDocuments() {
		title := rec.Type.Title()
		if score := FuzzyScore(title, query); score > 0 {
			results = append(results, SearchResult{Type: rec.Type, Title: title, MatchedText: title, Score: score})
		}

		for i, line := range strings.Split(rec.Content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if score := FuzzyScore(line, query); score >= substringScore {
				results = append(results, SearchResult{
					Type:        rec.Type,
					Title:       title,
					Line:        i + 1,
					MatchedText: line,
					Score:       score,
				})
			}
		}
	}

	results = SortResults(results)
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}

const (
	substringScore = 100
	prefixBonus    = 50
)

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := substringScore
		if strings.HasPrefix(target, query) {
			score += prefixBonus
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] != query[queryIdx] {
			continue
		}
		if prevMatchIdx == i-1 {
			score += 10 // consecutive chars
		}
		if i == 0 {
			score += 15 // start of string
		}
		if i > 0 && strings.ContainsRune(" .-_/", rune(target[i-1])) {
			score += 10 // after separator
		}
		score++
		prevMatchIdx = i
		queryIdx++
	}

	if queryIdx == len(query) {
		return min(score, substringScore-1)
	}
	return 0
}

// SortResults orders results by score, then catalog order, then line
func SortResults(results []SearchResult) []SearchResult {
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		return a.Line - b.Line
	})
	return results
}
