package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-relay-backend/internal/domain"
	"checkout-relay-backend/pkg/logger"
	"checkout-relay-backend/pkg/sanitize"
	"checkout-relay-backend/pkg/telegram"
)

const unnamedField = "(unnamed)"

// SubmissionConfig is the relay configuration injected at startup
type SubmissionConfig struct {
	TitlePrefix string
	// BlockFields are dropped from every message; must not be empty
	BlockFields []string
	MaxChunkLen int
}

type submissionUsecase struct {
	titlePrefix string
	blocked     map[string]struct{}
	maxChunkLen int
	dispatcher  domain.Dispatcher
	now         func() time.Time
}

// NewSubmissionUsecase fails when the block-list is empty, since every field
// would then be forwarded.
func NewSubmissionUsecase(cfg SubmissionConfig, dispatcher domain.Dispatcher, now func() time.Time) (domain.SubmissionUsecase, error) {
	blocked := make(map[string]struct{}, len(cfg.BlockFields))
	for _, f := range cfg.BlockFields {
		if f = normalizeKey(f); f != "" {
			blocked[f] = struct{}{}
		}
	}
	if len(blocked) == 0 {
		return nil, errors.New("submission relay needs at least one blocked field")
	}
	if dispatcher == nil {
		return nil, errors.New("submission relay needs a dispatcher")
	}
	if now == nil {
		now = time.Now
	}
	maxLen := cfg.MaxChunkLen
	if maxLen <= 0 {
		maxLen = telegram.MaxChunkLen
	}

	return &submissionUsecase{
		titlePrefix: cfg.TitlePrefix,
		blocked:     blocked,
		maxChunkLen: maxLen,
		dispatcher:  dispatcher,
		now:         now,
	}, nil
}

// Relay sanitizes, composes, chunks and dispatches one submission.
// A dispatch failure returns the outcome together with an ErrDispatchFailed error.
func (uc *submissionUsecase) Relay(ctx context.Context, sub *domain.Submission) (*domain.DispatchOutcome, error) {
	if !uc.dispatcher.Configured() {
		return nil, domain.ErrNotConfigured
	}

	clean := uc.sanitizeFields(sub.Fields)
	message := strings.Join(uc.composeMessage(clean, sub.Meta), "\n")
	chunks := telegram.Chunk(telegram.SplitLines(message), uc.maxChunkLen)

	delivered, err := uc.dispatcher.SendChunks(ctx, chunks)
	outcome := &domain.DispatchOutcome{
		OK:        err == nil,
		Chunks:    len(chunks),
		Delivered: delivered,
	}
	if err != nil {
		outcome.Error = err.Error()
		logger.Log.Warn("Submission relay failed",
			"chunks", outcome.Chunks,
			"delivered", outcome.Delivered,
			"error", outcome.Error,
		)
		return outcome, fmt.Errorf("%w: %w", domain.ErrDispatchFailed, err)
	}

	logger.Log.Info("Submission relayed",
		"fields", len(clean.Fields),
		"sensitive_omitted", clean.SensitiveOmitted,
		"chunks", outcome.Chunks,
	)
	return outcome, nil
}

// sanitizeFields drops blocked keys and strips markup from the rest.
// A key is blocked if its raw, base (array suffix cut) or filtered form is on the list.
func (uc *submissionUsecase) sanitizeFields(fields domain.FieldMap) domain.SanitizedSubmission {
	var out domain.SanitizedSubmission
	index := make(map[string]int, len(fields))

	for _, f := range fields {
		key := sanitize.Key(f.Key)
		if uc.isBlocked(f.Key) || uc.isBlocked(domain.BaseKey(f.Key)) || uc.isBlocked(key) {
			out.SensitiveOmitted = true
			continue
		}
		if key == "" {
			key = unnamedField
		}
		value := sanitize.Text(sanitize.JoinValues(f.Values))

		// two raw keys can filter to the same name: keep the first slot, last value
		if i, seen := index[key]; seen {
			out.Fields[i].Value = value
			continue
		}
		index[key] = len(out.Fields)
		out.Fields = append(out.Fields, domain.SanitizedField{Key: key, Value: value})
	}
	return out
}

func (uc *submissionUsecase) isBlocked(key string) bool {
	_, ok := uc.blocked[normalizeKey(key)]
	return ok
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// composeMessage renders the Telegram HTML lines: title, metadata, fields
func (uc *submissionUsecase) composeMessage(clean domain.SanitizedSubmission, meta domain.RequestMeta) []string {
	esc := sanitize.EscapeHTML
	title := esc(strings.TrimSpace(uc.titlePrefix + " - New Submission"))

	lines := []string{
		"<b>" + title + "</b>",
		"",
		"<b>Meta</b>",
		labelLine(esc, "Time", uc.now().UTC().Format("2006-01-02 15:04:05")+" UTC"),
		labelLine(esc, "IP", meta.IP),
		labelLine(esc, "User-Agent", meta.UserAgent),
		labelLine(esc, "Referrer", meta.Referrer),
		"",
		"<b>Fields</b>",
	}

	if clean.SensitiveOmitted {
		lines = append(lines, "(Note: Sensitive payment fields were omitted.)")
	}
	if len(clean.Fields) == 0 {
		return append(lines, "(No fields submitted.)")
	}
	for _, f := range clean.Fields {
		lines = append(lines, labelLine(esc, f.Key, f.Value))
	}
	return lines
}

func labelLine(esc func(string) string, key, value string) string {
	return "<b>" + esc(key) + ":</b> " + esc(value)
}
