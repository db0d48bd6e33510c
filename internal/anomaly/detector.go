// Package anomaly scores event-creation attempts for suspicious signals.
// The detector is stateless; the per-actor attempt window lives in the
// actor's security state and is pruned here.
package anomaly

import (
	"regexp"
	"time"

	"github.com/we-ne/sentinel/internal/models"
)

const (
	// DefaultBurstWindow is the trailing window for rapid-issue detection.
	DefaultBurstWindow = 60 * time.Second
	// DefaultBurstThreshold is the attempt count (including the current
	// one) that trips the rapid_issue_attempts signal.
	DefaultBurstThreshold = 3
)

var (
	keywordPattern = regexp.MustCompile(`(?i)\b(bot|auto|script|spam|mass)\b`)
	botUAPattern   = regexp.MustCompile(`(?i)(bot|crawl|spider|scrape|headless|phantomjs|selenium|curl|wget|python-requests|python-urllib|go-http-client|java/|libwww)`)
)

// Detector inspects event-creation attempts.
type Detector struct {
	window    time.Duration
	threshold int
}

func NewDetector() *Detector {
	return &Detector{
		window:    DefaultBurstWindow,
		threshold: DefaultBurstThreshold,
	}
}

// NewDetectorWithBurst overrides the burst window parameters.
func NewDetectorWithBurst(window time.Duration, threshold int) *Detector {
	return &Detector{window: window, threshold: threshold}
}

// Inspect prunes the attempt window, appends the current attempt, and
// returns the deduplicated signal set plus the updated window. An empty
// signal slice means the attempt is clean.
func (d *Detector) Inspect(title, host, userAgent string, attempts []time.Time, now time.Time) ([]string, []time.Time) {
	cutoff := now.Add(-d.window)
	pruned := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}
	pruned = append(pruned, now)

	var signals []string
	if keywordPattern.MatchString(title + " " + host) {
		signals = append(signals, models.SignalSuspiciousKeyword)
	}
	if userAgent != "" && botUAPattern.MatchString(userAgent) {
		signals = append(signals, models.SignalBotLikeUserAgent)
	}
	if len(pruned) >= d.threshold {
		signals = append(signals, models.SignalRapidIssueAttempts)
	}

	return signals, pruned
}
