package dedup

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// Window suppresses repeat alerts for the same opportunity inside a cooldown
// period. The timestamp of an entry is set when it is emitted and is never
// refreshed by a suppressed rediscovery, so the cooldown measures time since
// the alerted instance.
type Window struct {
	seen     map[string]time.Time // fingerprint -> last emitted at
	cooldown time.Duration
	mu       sync.Mutex
}

// NewWindow creates a deduplication window with the given cooldown
func NewWindow(cooldown time.Duration) *Window {
	return &Window{
		seen:     make(map[string]time.Time),
		cooldown: cooldown,
	}
}

// Cooldown returns the configured cooldown duration
func (w *Window) Cooldown() time.Duration {
	return w.cooldown
}

// ShouldEmit reports whether an opportunity with fingerprint fp may be alerted
// at now. An admitted fingerprint is recorded with now as its emission time.
func (w *Window) ShouldEmit(fp string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if lastSeen, ok := w.seen[fp]; ok && now.Sub(lastSeen) < w.cooldown {
		return false
	}

	w.seen[fp] = now
	return true
}

// Evict purges entries whose emission is older than the cooldown and returns
// how many were removed.
func (w *Window) Evict(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for fp, ts := range w.seen {
		if now.Sub(ts) > w.cooldown {
			delete(w.seen, fp)
			removed++
		}
	}
	return removed
}

// Len returns the number of fingerprints currently held
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

// Fingerprint builds the deduplication key of an opportunity from the event
// teams and its outcome@bookmaker pairing. With includeProfit the rounded
// profit percent is appended, so any change in profit re-alerts.
//
// Format: home|away|outcome@bookmaker,outcome@bookmaker[|profit]
func Fingerprint(opp *models.Opportunity, includeProfit bool) string {
	pairs := make([]string, 0, len(opp.Sides))
	for _, side := range opp.Sides {
		pairs = append(pairs, side.Outcome+"@"+side.Bookmaker)
	}
	sort.Strings(pairs)

	key := fmt.Sprintf("%s|%s|%s", opp.HomeTeam, opp.AwayTeam, strings.Join(pairs, ","))
	if includeProfit {
		key += "|" + opp.ProfitPercent.StringFixed(2)
	}
	return key
}
