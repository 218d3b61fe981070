package llm

import (
	"github.com/Yogeshknaik/MCP-server/internal/domain"
)

// historyWindow bounds how many recent turns are forwarded to the provider.
const historyWindow = 10

// buildMessages prepares the outbound turn list for a provider: the trimmed,
// normalized history followed by the current message as a user turn.
//
// Providers require the first turn to be user-authored and reject two adjacent
// turns with the same role, so:
//   - only the last historyWindow turns are kept;
//   - an empty history, or one whose first turn is not user-authored, is
//     discarded entirely in favor of the current message alone;
//   - within a run of same-role turns only the most recent one survives. The
//     current message is appended last, so it always survives.
func buildMessages(history []domain.Turn, message string) []domain.Turn {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) == 0 || history[0].Role != domain.RoleUser {
		return []domain.Turn{{Role: domain.RoleUser, Content: message}}
	}

	out := make([]domain.Turn, 0, len(history)+1)
	for _, t := range history {
		if n := len(out); n > 0 && out[n-1].Role == t.Role {
			out[n-1] = t
			continue
		}
		out = append(out, t)
	}

	current := domain.Turn{Role: domain.RoleUser, Content: message}
	if n := len(out); out[n-1].Role == domain.RoleUser {
		out[n-1] = current
	} else {
		out = append(out, current)
	}
	return out
}
