package external

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sagaforge/saga-api/internal/errors"
)

// DefaultHistoryLimit is how many interactions accumulate before the
// raw history is flushed into the running summary.
const DefaultHistoryLimit = 20

// Interaction is one player turn and its narrated response.
type Interaction struct {
	Player string
	Oracle string
}

// MemoryManager keeps the rolling conversation record, distilling raw
// history into a summary so the lore context never saturates.
type MemoryManager struct {
	provider NarrativeProvider
	limit    int

	history []Interaction
	summary string
}

// MemoryConfig holds the MemoryManager dependencies.
type MemoryConfig struct {
	Provider NarrativeProvider

	// HistoryLimit defaults to DefaultHistoryLimit when zero.
	HistoryLimit int
}

// Validate validates the MemoryConfig.
func (cfg *MemoryConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Provider == nil {
		return errors.InvalidArgument("provider cannot be nil")
	}
	if cfg.HistoryLimit < 0 {
		return errors.InvalidArgumentf("history limit cannot be negative, got %d", cfg.HistoryLimit)
	}
	return nil
}

// NewMemoryManager creates a MemoryManager.
func NewMemoryManager(cfg *MemoryConfig) (*MemoryManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryManager{provider: cfg.Provider, limit: limit}, nil
}

// AddInteraction records one turn. Hitting the history limit triggers
// summarization; a failed summarization keeps the raw history so
// nothing is lost.
func (m *MemoryManager) AddInteraction(ctx context.Context, player, oracle string) {
	m.history = append(m.history, Interaction{Player: player, Oracle: oracle})
	if len(m.history) < m.limit {
		return
	}

	summary, err := m.provider.Summarize(ctx, m.summary, m.transcript())
	if err != nil {
		slog.WarnContext(ctx, "history summarization failed", "error", err)
		return
	}
	m.summary = summary
	m.history = nil
	slog.InfoContext(ctx, "history summarized", "summary_len", len(summary))
}

// FullContext returns the summary plus any recent unsummarized
// history, formatted for the lore node.
func (m *MemoryManager) FullContext() string {
	var b strings.Builder
	b.WriteString("ADVENTURE_SUMMARY: " + m.summary + "\n")
	if len(m.history) > 0 {
		b.WriteString("RECENT_HISTORY:\n" + m.transcript())
	}
	return b.String()
}

// Summary returns the distilled summary alone.
func (m *MemoryManager) Summary() string {
	return m.summary
}

// HistoryLen reports how many raw interactions are pending.
func (m *MemoryManager) HistoryLen() int {
	return len(m.history)
}

func (m *MemoryManager) transcript() string {
	lines := make([]string, 0, len(m.history))
	for _, h := range m.history {
		lines = append(lines, "Player: "+h.Player+"\nOracle: "+h.Oracle)
	}
	return strings.Join(lines, "\n")
}
