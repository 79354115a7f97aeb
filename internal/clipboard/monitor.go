package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brencon/clipsy/internal/artifact"
	"github.com/brencon/clipsy/internal/classify"
	"github.com/brencon/clipsy/internal/config"
	"github.com/brencon/clipsy/internal/database"
	"github.com/brencon/clipsy/internal/fingerprint"
	"github.com/brencon/clipsy/internal/redact"
)

// Monitor polls a clipboard source for changes and runs new payloads
// through classification, redaction and storage.
type Monitor struct {
	source     Source
	repository *database.Repository
	artifacts  *artifact.Store
	classifier *classify.Classifier
	config     *config.Config
	logger     *slog.Logger

	// lastCount holds the change counter value of the last handled
	// observation. primed is false until a first value has been seen;
	// content already on the clipboard at startup is not captured.
	lastCount uint64
	primed    bool

	events chan Event
}

func NewMonitor(source Source, repository *database.Repository, artifacts *artifact.Store, classifier *classify.Classifier, cfg *config.Config, logger *slog.Logger) *Monitor {
	m := &Monitor{
		source:     source,
		repository: repository,
		artifacts:  artifacts,
		classifier: classifier,
		config:     cfg,
		logger:     logger,
		events:     make(chan Event, 100),
	}
	if count, err := source.ChangeCount(); err == nil {
		m.lastCount = count
		m.primed = true
	}
	return m
}

// Events returns the notification stream. Events are dropped rather than
// blocking the poll loop when nobody is listening.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Run polls the source until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.config.PollInterval())
	defer ticker.Stop()

	m.logger.Info("clipboard monitor started", "interval", m.config.PollInterval())
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("clipboard monitor stopped")
			return nil
		case <-ticker.C:
			if _, err := m.CheckOnce(ctx); err != nil {
				m.logger.Warn("capture failed", "error", err)
				m.emit(Event{Type: EventError, Err: err})
			}
		}
	}
}

// CheckOnce performs a single poll step and reports whether it stored or
// bumped an entry. A failed clipboard read leaves the counter untouched
// so the next tick retries; a failed store drops the candidate.
func (m *Monitor) CheckOnce(ctx context.Context) (bool, error) {
	count, err := m.source.ChangeCount()
	if err != nil {
		return false, fmt.Errorf("read change counter: %w", err)
	}
	if !m.primed {
		m.lastCount = count
		m.primed = true
		return false, nil
	}
	if count == m.lastCount {
		return false, nil
	}

	payload, err := m.source.Read()
	if err != nil {
		return false, fmt.Errorf("read clipboard: %w", err)
	}
	m.lastCount = count

	return m.capture(ctx, payload)
}

func (m *Monitor) capture(ctx context.Context, payload classify.Payload) (bool, error) {
	cand, err := m.classifier.Classify(payload)
	if errors.Is(err, classify.ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("classify payload: %w", err)
	}

	limit := m.config.MaxTextSize
	if cand.Kind == classify.KindImage {
		limit = m.config.MaxImageSize
	}
	if limit > 0 && cand.Size > limit {
		m.logger.Debug("skipping oversized payload", "kind", cand.Kind, "size", cand.Size, "limit", limit)
		return false, nil
	}

	entry := &database.Entry{
		Kind:    cand.Kind,
		Content: cand.Text,
		Preview: cand.Preview,
		Size:    cand.Size,
	}

	if cand.Kind == classify.KindText && m.config.RedactSensitive {
		if matches := redact.Detect(cand.Text); len(matches) > 0 {
			entry.Sensitive = true
			entry.MaskedPreview = m.classifier.Preview(redact.Mask(cand.Text, matches))
			m.logger.Info("sensitive content detected", "categories", redact.Summary(matches))
		}
	}

	entry.Hash = fingerprint.Sum(string(cand.Kind), cand.Data)

	if cand.Kind == classify.KindImage {
		// The artifact must be durable before the row referencing it.
		path, err := m.artifacts.Put(entry.Hash, cand.Data)
		if err != nil {
			return false, fmt.Errorf("store artifact: %w", err)
		}
		entry.ArtifactPath = path
		entry.Content = ""
		if thumb, err := m.artifacts.Thumbnail(entry.Hash, m.config.ThumbnailSize); err == nil {
			entry.ThumbPath = thumb
		} else {
			m.logger.Debug("thumbnail generation skipped", "hash", entry.Hash, "error", err)
		}
	}

	id, created, err := m.repository.Upsert(ctx, entry)
	if err != nil {
		return false, fmt.Errorf("save entry: %w", err)
	}

	if created {
		m.logger.Info("captured clipboard entry", "id", id, "kind", cand.Kind, "size", cand.Size)
		m.emit(Event{Type: EventCaptured, ID: id, Kind: cand.Kind, Preview: entry.DisplayLabel()})
	} else {
		m.logger.Debug("bumped clipboard entry", "id", id, "kind", cand.Kind)
		m.emit(Event{Type: EventBumped, ID: id, Kind: cand.Kind, Preview: entry.DisplayLabel()})
	}
	return true, nil
}

// Restore copies a stored entry back onto the clipboard. The write moves
// the source's change counter and the next poll reads our own payload
// back; content hashing turns that echo into a bump of this same entry
// rather than a duplicate row.
func (m *Monitor) Restore(ctx context.Context, id int64) error {
	entry, err := m.repository.Get(ctx, id)
	if err != nil {
		return err
	}

	var payload classify.Payload
	switch entry.Kind {
	case classify.KindText:
		payload.Text = entry.Content
	case classify.KindFile:
		payload.Files = strings.Split(entry.Content, "\n")
	case classify.KindImage:
		data, err := m.artifacts.Read(entry.Hash)
		if err != nil {
			return fmt.Errorf("load artifact for entry %d: %w", id, err)
		}
		payload.Image = data
	default:
		return fmt.Errorf("unsupported entry kind: %s", entry.Kind)
	}

	if err := m.source.Write(payload); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	m.logger.Info("restored entry to clipboard", "id", id, "kind", entry.Kind)
	return nil
}

func (m *Monitor) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}
