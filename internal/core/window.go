package core

import (
	"fmt"
	"strings"

	"github.com/campuscare/wellbeing-chat/internal/store"
)

// DefaultHistoryWindow is how many past exchanges feed the agents.
const DefaultHistoryWindow = 10

// RenderContext renders the last windowSize exchanges of history followed
// by newText as an unanswered turn. history is not modified.
func RenderContext(history []store.Exchange, windowSize int, newText string) string {
	if windowSize < 0 {
		windowSize = 0
	}
	if len(history) > windowSize {
		history = history[len(history)-windowSize:]
	}

	lines := make([]string, 0, len(history)+1)
	for _, ex := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nBot: %s", ex.User, ex.Bot))
	}
	lines = append(lines, fmt.Sprintf("User: %s\nBot:", newText))
	return strings.Join(lines, "\n")
}
