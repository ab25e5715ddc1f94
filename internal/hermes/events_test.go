package hermes

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIntelEventParsing(t *testing.T) {
	raw := `{
		"turn_id": "6f1c2d3e-0000-4000-8000-000000000001",
		"conversation_id": "c1",
		"turn": 3,
		"upi_ids": ["scammer@upi"],
		"phishing_urls": ["http://bad.ly/x"],
		"bank_accounts": [],
		"timestamp": "2026-03-01T12:00:00Z"
	}`

	var evt IntelEvent
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("failed to parse IntelEvent: %v", err)
	}

	if evt.ConversationID != "c1" {
		t.Errorf("expected conversation_id 'c1', got '%s'", evt.ConversationID)
	}
	if evt.Turn != 3 {
		t.Errorf("expected turn 3, got %d", evt.Turn)
	}
	if len(evt.UPIIDs) != 1 || evt.UPIIDs[0] != "scammer@upi" {
		t.Errorf("unexpected upi_ids %v", evt.UPIIDs)
	}
	if !evt.Timestamp.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", evt.Timestamp)
	}
}

func TestTurnEventOmitsMessageContent(t *testing.T) {
	evt := TurnEvent{
		TurnID:          "t-1",
		ConversationID:  "c2",
		Turn:            1,
		ScamDetected:    true,
		MatchedKeywords: []string{"otp"},
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{"message", "agent_reply"} {
		if strings.Contains(string(data), field) {
			t.Errorf("turn event should not carry %q: %s", field, data)
		}
	}
	if !strings.Contains(string(data), `"matched_keywords":["otp"]`) {
		t.Errorf("matched keywords missing: %s", data)
	}
}
