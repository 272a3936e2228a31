package table

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/cmd/emoji"
)

// ExplanationToTableData lists every contribution to an explained cell in
// merge order, marking the winner.
func ExplanationToTableData(e *tablemerge.Explanation) Data {
	rows := make([][]string, 0, len(e.Contributions))
	for i, p := range e.Contributions {
		current := ""
		if i == len(e.Contributions)-1 && e.IsWinner(p.Source) {
			current = emoji.Winner
		}
		previous := "-"
		if p.PreviousSource != "" {
			previous = fmt.Sprintf("%s (%s)", formatValue(p.PreviousValue), SourceName(p.PreviousSource))
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Rank),
			current,
			formatValue(p.Value),
			p.Source,
			p.Reason,
			previous,
			formatTimestamp(p.Timestamp.Time),
		})
	}

	return Data{
		Headers: []string{"Rank", "Curr", "Value", "Source", "Reason", "Previous", "When"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignRight,  // Rank
			AlignCenter, // Curr
			AlignLeft,   // Value
			AlignLeft,   // Source
			AlignLeft,   // Reason
			AlignLeft,   // Previous
			AlignLeft,   // When
		},
	}
}

// MatchColumn checks if a column matches any of the provided patterns.
// Patterns are shell globs ("hp*", "?ame"); matching is case-insensitive.
func MatchColumn(column string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	columnLower := strings.ToLower(column)
	for _, pattern := range patterns {
		patternLower := strings.ToLower(strings.TrimSpace(pattern))
		if patternLower == columnLower {
			return true
		}
		matched, err := filepath.Match(patternLower, columnLower)
		if err == nil && matched {
			return true
		}
	}

	return false
}

func formatValue(v string) string {
	if v == "" {
		return "<empty>"
	}
	return v
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		return fmt.Sprintf("%d min ago", int(diff.Minutes()))
	}
	if diff < 24*time.Hour {
		return fmt.Sprintf("%d hr ago", int(diff.Hours()))
	}
	if diff < 7*24*time.Hour {
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}

	return t.Format("2006-01-02 15:04")
}
