package identity

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/ysaito/tg-lingo-circle/pkg/lang"
)

// ErrUnsupportedLanguage is returned when a target language outside the
// two practice languages is requested.
var ErrUnsupportedLanguage = errors.New("unsupported target language")

// User is one circle member, keyed by the platform user id. Target
// language stays empty until the member picks one; users are never
// deleted.
type User struct {
	ID             int64
	TeamID         int64
	TargetLanguage lang.Language
	CreatedAt      time.Time
}

// Registry owns the user and pseudonym tables. All mutation goes
// through the registry mutex, so two near-simultaneous events for the
// same user cannot race on creation.
type Registry struct {
	mu         sync.Mutex
	users      map[int64]User
	pseudonyms map[int64]Pseudonym
	now        func() time.Time
	rng        *rand.Rand
	onChange   func(User, Pseudonym)
}

func NewRegistry(now func() time.Time, rng *rand.Rand) *Registry {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		users:      make(map[int64]User),
		pseudonyms: make(map[int64]Pseudonym),
		now:        now,
		rng:        rng,
	}
}

var DefaultRegistry = NewRegistry(nil, nil)

func ResetDefaultRegistry() {
	DefaultRegistry = NewRegistry(nil, nil)
}

// SetOnChange installs the persistence hook invoked after every
// mutation. The hook must not call back into the registry.
func (r *Registry) SetOnChange(hook func(User, Pseudonym)) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = hook
}

// GetOrCreate returns the user record for userID, creating the user,
// its pseudonym and (via the hook) its points entry on first contact.
// A pseudonym found missing for an existing user is regenerated here;
// the emoji pair comes from the fresh handle, not from any old record.
// Idempotent for existing users.
func (r *Registry) GetOrCreate(userID, teamID int64) User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		user = User{
			ID:        userID,
			TeamID:    teamID,
			CreatedAt: r.now(),
		}
		r.users[userID] = user
	}
	if _, ok := r.pseudonyms[userID]; !ok {
		p := GeneratePseudonym(r.rng)
		p.Cohort = CohortLabel(string(user.TargetLanguage))
		r.pseudonyms[userID] = p
	}
	r.notifyLocked(user)
	return user
}

// SetTargetLanguage overwrites the user's practice language. The user
// is created first if this is somehow the first contact.
func (r *Registry) SetTargetLanguage(userID int64, code string) error {
	if !lang.IsSupported(code) {
		return ErrUnsupportedLanguage
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		user = User{ID: userID, CreatedAt: r.now()}
	}
	user.TargetLanguage = lang.Language(code)
	r.users[userID] = user
	if p, ok := r.pseudonyms[userID]; ok {
		p.Cohort = CohortLabel(code)
		r.pseudonyms[userID] = p
	} else {
		p := GeneratePseudonym(r.rng)
		p.Cohort = CohortLabel(code)
		r.pseudonyms[userID] = p
	}
	r.notifyLocked(user)
	return nil
}

// User returns the record and whether it exists, without creating it.
func (r *Registry) User(userID int64) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	return user, ok
}

// PseudonymOf returns the handle record for a known user.
func (r *Registry) PseudonymOf(userID int64) (Pseudonym, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pseudonyms[userID]
	return p, ok
}

// All returns a snapshot of every registered user, for broadcast
// fan-out.
func (r *Registry) All() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users
}

// Rehydrate loads users and pseudonyms read back from the persistence
// mirror at startup. Entries already present in memory win.
func (r *Registry) Rehydrate(users []User, pseudonyms map[int64]Pseudonym) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		if _, ok := r.users[u.ID]; !ok {
			r.users[u.ID] = u
		}
	}
	for id, p := range pseudonyms {
		if _, ok := r.pseudonyms[id]; !ok {
			r.pseudonyms[id] = p
		}
	}
}

func (r *Registry) notifyLocked(user User) {
	if r.onChange == nil {
		return
	}
	r.onChange(user, r.pseudonyms[user.ID])
}
