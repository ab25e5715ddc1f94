package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/snare/internal/detector"
	"github.com/MikeSquared-Agency/snare/internal/extractor"
	"github.com/MikeSquared-Agency/snare/internal/hermes"
	"github.com/MikeSquared-Agency/snare/internal/observability"
	"github.com/MikeSquared-Agency/snare/internal/persona"
	"github.com/MikeSquared-Agency/snare/internal/rules"
	"github.com/MikeSquared-Agency/snare/internal/session"
	"github.com/MikeSquared-Agency/snare/internal/slack"
	"github.com/MikeSquared-Agency/snare/internal/store"
)

// Publisher is satisfied by *hermes.Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Archive is satisfied by *store.Store.
type Archive interface {
	WriteTurn(ctx context.Context, rec store.TurnRecord) error
}

// deliveryTimeout bounds each turn's archive write and Slack post together.
const deliveryTimeout = 5 * time.Second

// Alerter is satisfied by *slack.Poster.
type Alerter interface {
	PostIntelAlert(ctx context.Context, alert slack.IntelAlert) (string, error)
}

// Report is the outward result of one turn.
type Report struct {
	TurnID          string
	ScamDetected    bool
	AgentEngaged    bool
	Turns           int
	DurationSeconds int64
	Intel           extractor.Intelligence
	Reply           string
}

// Processor runs the honeypot turn pipeline: classify, extract, record,
// reply, report.
type Processor struct {
	sessions   *session.Store
	classifier *detector.Classifier
	extractor  *extractor.Extractor
	persona    *persona.Generator
	logger     *slog.Logger
	now        func() time.Time

	// Optional collaborators. Nil disables each one.
	hermes  Publisher
	archive Archive
	alerter Alerter
	metrics *observability.Metrics

	pending sync.WaitGroup
}

type Option func(*Processor)

func WithPublisher(p Publisher) Option {
	return func(pr *Processor) { pr.hermes = p }
}

func WithArchive(a Archive) Option {
	return func(pr *Processor) { pr.archive = a }
}

// WithAlerter posts an analyst alert for every turn that yields intelligence.
func WithAlerter(a Alerter) Option {
	return func(pr *Processor) { pr.alerter = a }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(pr *Processor) { pr.metrics = m }
}

// WithClock overrides the clock used for elapsed durations and event stamps.
func WithClock(now func() time.Time) Option {
	return func(pr *Processor) { pr.now = now }
}

func New(sessions *session.Store, c *detector.Classifier, ext *extractor.Extractor, gen *persona.Generator, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		sessions:   sessions,
		classifier: c,
		extractor:  ext,
		persona:    gen,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTurn handles one inbound message for conversationID. It never fails:
// every string, including the empty one, produces a report.
//
// The session lock is only held while the turn is recorded. The persona's
// think time runs afterwards, so a slow reply never stalls other turns.
func (p *Processor) ProcessTurn(ctx context.Context, conversationID, message string) Report {
	turnID := uuid.New()

	matched := p.classifier.Matches(message)
	isScam := len(matched) > 0
	fragment := p.extractor.Extract(message)

	snap := p.sessions.RecordTurn(conversationID, fragment)

	var reply string
	if isScam {
		start := time.Now()
		reply = p.persona.Reply(ctx)
		if p.metrics != nil {
			p.metrics.ObserveReplyLatency(time.Since(start))
		}
	}

	report := Report{
		TurnID:          turnID.String(),
		ScamDetected:    isScam,
		AgentEngaged:    isScam,
		Turns:           snap.Turns,
		DurationSeconds: snap.Elapsed(p.now()),
		Intel:           snap.Intel,
		Reply:           reply,
	}

	p.logger.Info("turn processed",
		"turn_id", report.TurnID,
		"conversation_id", conversationID,
		"turn", report.Turns,
		"scam_detected", isScam,
		"matched_keywords", matched,
		"new_intel", fragment.Count(),
	)

	p.notify(ctx, turnID, conversationID, matched, fragment, report)
	return report
}

// Dossier returns the accumulated state for conversationID without creating a
// session.
func (p *Processor) Dossier(conversationID string) (session.Snapshot, int64, bool) {
	snap, ok := p.sessions.Get(conversationID)
	if !ok {
		return session.Snapshot{}, 0, false
	}
	return snap, snap.Elapsed(p.now()), true
}

// notify fans the turn out to metrics, NATS, the archive and Slack. Failures
// are logged and never change the report. Metrics and NATS publishes are
// in-process buffers and happen inline; the rest is handed to a goroutine.
func (p *Processor) notify(ctx context.Context, turnID uuid.UUID, conversationID string, matched []string, f extractor.Fragment, r Report) {
	if p.metrics != nil {
		p.metrics.ObserveTurn(r.ScamDetected)
		p.metrics.AddIntel(rules.CategoryUPI, len(f.UPIIDs))
		p.metrics.AddIntel(rules.CategoryURL, len(f.PhishingURLs))
		p.metrics.AddIntel(rules.CategoryAccount, len(f.BankAccounts))
	}

	if p.hermes != nil {
		ts := p.now().UTC()
		keywords := matched
		if keywords == nil {
			keywords = []string{}
		}
		if err := p.hermes.Publish(hermes.SubjectTurnProcessed, hermes.TurnEvent{
			TurnID:          r.TurnID,
			ConversationID:  conversationID,
			Turn:            r.Turns,
			ScamDetected:    r.ScamDetected,
			MatchedKeywords: keywords,
			DurationSeconds: r.DurationSeconds,
			Timestamp:       ts,
		}); err != nil {
			p.logger.Error("failed to publish turn event", "turn_id", r.TurnID, "error", err)
		}

		if !f.Empty() {
			if err := p.hermes.Publish(hermes.SubjectIntelExtracted, hermes.IntelEvent{
				TurnID:         r.TurnID,
				ConversationID: conversationID,
				Turn:           r.Turns,
				UPIIDs:         f.UPIIDs,
				PhishingURLs:   f.PhishingURLs,
				BankAccounts:   f.BankAccounts,
				Timestamp:      ts,
			}); err != nil {
				p.logger.Error("failed to publish intel event", "turn_id", r.TurnID, "error", err)
			}
		}
	}

	if p.archive == nil && (p.alerter == nil || f.Empty()) {
		return
	}

	// Detached from ctx: the write outlives a caller that hangs up mid-turn.
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.deliver(context.WithoutCancel(ctx), turnID, conversationID, matched, f, r)
	}()
}

func (p *Processor) deliver(ctx context.Context, turnID uuid.UUID, conversationID string, matched []string, f extractor.Fragment, r Report) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if p.archive != nil {
		if err := p.archive.WriteTurn(ctx, store.TurnRecord{
			TurnID:          turnID,
			ConversationID:  conversationID,
			Turn:            r.Turns,
			ScamDetected:    r.ScamDetected,
			MatchedKeywords: matched,
			AgentEngaged:    r.AgentEngaged,
			DurationSeconds: r.DurationSeconds,
			Fragment:        f,
		}); err != nil {
			p.logger.Error("failed to archive turn", "turn_id", r.TurnID, "conversation_id", conversationID, "error", err)
		}
	}

	if p.alerter != nil && !f.Empty() {
		if _, err := p.alerter.PostIntelAlert(ctx, slack.IntelAlert{
			TurnID:         r.TurnID,
			ConversationID: conversationID,
			Turn:           r.Turns,
			ScamDetected:   r.ScamDetected,
			Fragment:       f,
		}); err != nil {
			p.logger.Warn("failed to post intel alert", "turn_id", r.TurnID, "error", err)
		}
	}
}

// Wait blocks until every archive and Slack delivery started so far has
// finished. Call it after the HTTP server has stopped accepting turns.
func (p *Processor) Wait() {
	p.pending.Wait()
}
