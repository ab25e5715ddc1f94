package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/snare/internal/extractor"
	"github.com/MikeSquared-Agency/snare/internal/rules"
)

// TurnRecord is one processed turn and the values found in its message.
type TurnRecord struct {
	TurnID          uuid.UUID
	ConversationID  string
	Turn            int
	ScamDetected    bool
	MatchedKeywords []string
	AgentEngaged    bool
	DurationSeconds int64
	Fragment        extractor.Fragment
}

// WriteTurn archives a turn and its fragment in one transaction.
// Tables: honeypot_turns, honeypot_intel.
func (s *Store) WriteTurn(ctx context.Context, rec TurnRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	keywords := rec.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO honeypot_turns (id, conversation_id, turn, scam_detected, matched_keywords, agent_engaged, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		rec.TurnID, rec.ConversationID, rec.Turn, rec.ScamDetected, keywords, rec.AgentEngaged, rec.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	for _, item := range intelRows(rec.Fragment) {
		_, err = tx.Exec(ctx, `
			INSERT INTO honeypot_intel (id, turn_id, conversation_id, category, position, value)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), rec.TurnID, rec.ConversationID, item.category, item.position, item.value,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", item.category, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type intelRow struct {
	category string
	position int
	value    string
}

// intelRows flattens a fragment in scan order; position is the index within
// its category for this message.
func intelRows(f extractor.Fragment) []intelRow {
	var rows []intelRow
	add := func(category string, values []string) {
		for i, v := range values {
			rows = append(rows, intelRow{category: category, position: i, value: v})
		}
	}
	add(rules.CategoryUPI, f.UPIIDs)
	add(rules.CategoryURL, f.PhishingURLs)
	add(rules.CategoryAccount, f.BankAccounts)
	return rows
}
