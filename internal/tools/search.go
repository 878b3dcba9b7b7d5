package tools

import (
	"context"
	"fmt"
	"strings"
)

// SearchTool simulates external data lookups (stock prices, weather, file
// checks). It returns a legacy plain-string result, which exercises the
// dispatcher's normalization path.
type SearchTool struct{}

// NewSearchTool creates a search tool.
func NewSearchTool() *SearchTool {
	return &SearchTool{}
}

func (t *SearchTool) Name() string {
	return SearchToolName
}

func (t *SearchTool) Description() string {
	return "Searches for information, looks up data, checks files, or retrieves external information. Use this for queries about stock prices, weather, file checks, or any factual lookup."
}

// Execute answers the query from canned lookup categories.
func (t *SearchTool) Execute(ctx context.Context, content string, meta ExecContext) (any, error) {
	query := strings.ToLower(content)

	switch {
	case strings.Contains(query, "stock") && strings.Contains(query, "google"):
		return "Google (GOOGL) stock price: $142.50 (last updated: today)", nil
	case strings.Contains(query, "stock"):
		return fmt.Sprintf("stock information: market data retrieved for %q", content), nil
	case strings.Contains(query, "weather"):
		return "weather: 72°F, partly cloudy, 10% chance of rain", nil
	case strings.Contains(query, "file"), strings.Contains(query, "document"), strings.Contains(query, "attach"):
		return "file check: found 3 relevant files ready for review", nil
	default:
		return fmt.Sprintf("search result: information retrieved for %q", content), nil
	}
}
