package hermes

import "time"

// Subjects published by the honeypot.
const (
	// SubjectTurnProcessed carries every accepted webhook turn.
	SubjectTurnProcessed = "swarm.snare.turn.processed"
	// SubjectIntelExtracted is only published when a turn yielded new values.
	SubjectIntelExtracted = "swarm.snare.intel.extracted"
)

// TurnEvent summarises one processed turn. It deliberately omits the message
// body and the persona reply.
type TurnEvent struct {
	TurnID          string    `json:"turn_id"`
	ConversationID  string    `json:"conversation_id"`
	Turn            int       `json:"turn"`
	ScamDetected    bool      `json:"scam_detected"`
	MatchedKeywords []string  `json:"matched_keywords"`
	DurationSeconds int64     `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}

// IntelEvent carries the values found in a single message, not the whole
// dossier. Consumers rebuild the dossier by appending events in turn order.
type IntelEvent struct {
	TurnID         string    `json:"turn_id"`
	ConversationID string    `json:"conversation_id"`
	Turn           int       `json:"turn"`
	UPIIDs         []string  `json:"upi_ids"`
	PhishingURLs   []string  `json:"phishing_urls"`
	BankAccounts   []string  `json:"bank_accounts"`
	Timestamp      time.Time `json:"timestamp"`
}
