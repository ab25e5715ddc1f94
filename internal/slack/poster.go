package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/snare/internal/extractor"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// IntelAlert is what analysts see when a turn surfaces new scammer details.
type IntelAlert struct {
	TurnID         string
	ConversationID string
	Turn           int
	ScamDetected   bool
	Fragment       extractor.Fragment
}

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostIntelAlert posts the values found in one turn to the alert channel.
// Returns the message timestamp (ts).
func (p *Poster) PostIntelAlert(ctx context.Context, alert IntelAlert) (string, error) {
	text := formatIntelAlert(alert)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "turn " + alert.TurnID,
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted intel alert to slack", "ts", slackResp.TS, "conversation_id", alert.ConversationID)
	return slackResp.TS, nil
}

func formatIntelAlert(a IntelAlert) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Conversation:* `%s` (turn %d)\n", a.ConversationID, a.Turn)
	if a.ScamDetected {
		sb.WriteString("*Scam detected:* yes, persona engaged\n\n")
	} else {
		sb.WriteString("*Scam detected:* no\n\n")
	}

	writeSection(&sb, "UPI IDs", a.Fragment.UPIIDs)
	writeSection(&sb, "Phishing URLs", a.Fragment.PhishingURLs)
	writeSection(&sb, "Bank accounts", a.Fragment.BankAccounts)

	if a.Fragment.Empty() {
		sb.WriteString("_No intelligence extracted from this turn._")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func writeSection(sb *strings.Builder, title string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "*%s: %d*\n", title, len(values))
	for i, v := range values {
		fmt.Fprintf(sb, "%d. %s\n", i+1, codeSpan(v))
	}
}

// codeSpan wraps v in backticks so Slack neither links nor unfurls it. A
// backtick inside v would close the span early, so it is swapped for a
// look-alike modifier letter.
func codeSpan(v string) string {
	return "`" + strings.ReplaceAll(v, "`", "\u02cb") + "`"
}
