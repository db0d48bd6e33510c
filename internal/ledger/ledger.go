// Package ledger implements the append-only, hash-chained audit/execution
// log. Each entry commits to the hash of its predecessor, so silent
// deletion or reordering of records is detectable by re-walking the chain.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/we-ne/sentinel/internal/messaging"
	"github.com/we-ne/sentinel/internal/models"
	"github.com/we-ne/sentinel/internal/repository"
)

// GenesisHash is the prevHash of the first entry: 64 zero hex chars.
var GenesisHash = strings.Repeat("0", 64)

const (
	defaultReadLimit = 100
	maxReadLimit     = 500
)

// Ledger is the in-process chain. Appends are strictly serialized: entry n's
// prevHash is always entry n-1's entryHash, concurrent callers never
// interleave.
type Ledger struct {
	mu       sync.Mutex
	entries  []*models.LedgerEntry
	lastHash string

	archive   repository.LedgerArchive
	publisher messaging.Publisher
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithArchive mirrors every appended entry into durable storage.
func WithArchive(a repository.LedgerArchive) Option {
	return func(l *Ledger) { l.archive = a }
}

// WithPublisher fans every appended entry out to a message broker.
func WithPublisher(p messaging.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		lastHash: GenesisHash,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append creates the next chain entry. There is no update or delete;
// corrections are appended as compensating entries.
func (l *Ledger) Append(category, action string, actor models.Actor, targetActorID string, details map[string]any) *models.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, _ := uuid.NewV7()
	entry := &models.LedgerEntry{
		ID:            id.String(),
		Timestamp:     l.now().UTC(),
		Category:      category,
		Action:        action,
		Actor:         actor,
		TargetActorID: targetActorID,
		Details:       details,
		PrevHash:      l.lastHash,
	}
	entry.EntryHash = ComputeEntryHash(entry)

	l.entries = append(l.entries, entry)
	l.lastHash = entry.EntryHash

	if l.archive != nil {
		// Background context: archival must not die with the request.
		if err := l.archive.ArchiveEntry(context.Background(), entry); err != nil {
			slog.Warn("failed to archive ledger entry",
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if l.publisher != nil {
		go func(e *models.LedgerEntry) {
			data, err := json.Marshal(e)
			if err != nil {
				return
			}
			subject := messaging.SubjectLedgerPrefix + e.Category
			if err := l.publisher.Publish(context.Background(), subject, data); err != nil {
				slog.Warn("failed to publish ledger entry",
					slog.String("entry_id", e.ID),
					slog.String("error", err.Error()),
				)
			}
		}(entry)
	}

	return entry
}

// List returns up to limit entries, newest first, optionally filtered by
// category. Limits are clamped to [1, 500] with a default of 100.
func (l *Ledger) List(category string, limit int) []*models.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = defaultReadLimit
	}
	if limit > maxReadLimit {
		limit = maxReadLimit
	}

	out := make([]*models.LedgerEntry, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := l.entries[i]
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// LastHash returns the entryHash of the newest entry, or the genesis hash
// when the chain is empty.
func (l *Ledger) LastHash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastHash
}

// Len returns the number of chain entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Verify re-walks the chain: every prevHash must equal the predecessor's
// entryHash (genesis uses the zero hash) and every entryHash must recompute
// from the entry's fields.
func (l *Ledger) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := GenesisHash
	for i, e := range l.entries {
		if e.PrevHash != prev {
			return fmt.Errorf("chain broken at entry %d (%s): prevHash %s does not match %s", i, e.ID, e.PrevHash, prev)
		}
		if recomputed := ComputeEntryHash(e); recomputed != e.EntryHash {
			return fmt.Errorf("entry %d (%s) hash mismatch: recorded %s, recomputed %s", i, e.ID, e.EntryHash, recomputed)
		}
		prev = e.EntryHash
	}
	return nil
}

// ComputeEntryHash derives the commitment for an entry from every field
// except EntryHash itself. Details are canonicalized through encoding/json
// (map keys are emitted sorted).
func ComputeEntryHash(e *models.LedgerEntry) string {
	details := ""
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			details = string(b)
		}
	}

	payload := strings.Join([]string{
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Category,
		e.Action,
		e.Actor.ActorID,
		e.TargetActorID,
		details,
		e.PrevHash,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
