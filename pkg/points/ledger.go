// Package points keeps the per-user score totals behind the
// leaderboard.
package points

import (
	"sort"
	"sync"
)

// Entry is one leaderboard row.
type Entry struct {
	UserID int64
	Total  int
}

// Ledger is a mutex-guarded counter table. Totals never decrease:
// increments with a non-positive amount are no-ops, and no decrement
// operation exists.
type Ledger struct {
	mu       sync.Mutex
	totals   map[int64]int
	order    map[int64]int // first-touch sequence, for stable tie-breaks
	seq      int
	onChange func(userID int64, total int)
}

func NewLedger() *Ledger {
	return &Ledger{
		totals: make(map[int64]int),
		order:  make(map[int64]int),
	}
}

var DefaultLedger = NewLedger()

func ResetDefaultLedger() {
	DefaultLedger = NewLedger()
}

// SetOnChange installs the persistence hook fired after every change.
func (l *Ledger) SetOnChange(hook func(userID int64, total int)) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = hook
}

// Touch ensures a zero-point entry exists for the user, so that first
// contact initializes points alongside the pseudonym. The change hook
// fires only when the entry is newly created.
func (l *Ledger) Touch(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.touchLocked(userID) && l.onChange != nil {
		l.onChange(userID, 0)
	}
}

// Increment adds amount to the user's total. Amounts below one are
// ignored.
func (l *Ledger) Increment(userID int64, amount int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.touchLocked(userID)
	if amount > 0 {
		l.totals[userID] += amount
	}
	total := l.totals[userID]
	if l.onChange != nil {
		l.onChange(userID, total)
	}
	return total
}

// Get returns the user's total, zero for unknown users.
func (l *Ledger) Get(userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[userID]
}

// TopN returns up to n entries sorted by total descending. Ties keep
// first-touch order so repeated renders of the leaderboard are stable.
func (l *Ledger) TopN(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.totals))
	for userID, total := range l.totals {
		entries = append(entries, Entry{UserID: userID, Total: total})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return l.order[entries[i].UserID] < l.order[entries[j].UserID]
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Rehydrate loads totals read back from the persistence mirror at
// startup. Live entries win.
func (l *Ledger) Rehydrate(totals map[int64]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for userID, total := range totals {
		if _, ok := l.totals[userID]; ok {
			continue
		}
		l.touchLocked(userID)
		l.totals[userID] = total
	}
}

func (l *Ledger) touchLocked(userID int64) bool {
	if _, ok := l.totals[userID]; ok {
		return false
	}
	l.totals[userID] = 0
	l.order[userID] = l.seq
	l.seq++
	return true
}
