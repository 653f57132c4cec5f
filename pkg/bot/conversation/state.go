package conversation

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTimeout  = 30 * time.Minute
	SweeperInterval = time.Minute
)

// Mode is the phase of a user's conversation.
type Mode int

const (
	Idle Mode = iota
	CollectingKeywords
)

func (m Mode) String() string {
	switch m {
	case CollectingKeywords:
		return "collecting_keywords"
	default:
		return "idle"
	}
}

// Kind is the classification of an inbound text message.
type Kind int

const (
	KindText Kind = iota
	KindLink
)

// Classify reports KindLink for text that starts with http:// or https://.
// The check is a case-sensitive prefix test and nothing more; malformed URLs
// still count as links.
func Classify(text string) Kind {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return KindLink
	}
	return KindText
}

// Intent tells the caller what an inbound text means for this user.
type Intent int

const (
	IntentIgnore Intent = iota
	IntentQuery
	IntentLinkWithoutBegin
	IntentKeywordAdded
	IntentNeedKeyword
	IntentFinalize
)

type Outcome struct {
	Intent Intent
	// Text is the trimmed message.
	Text string
	// Keywords is a copy of the collected keywords for IntentFinalize and
	// IntentKeywordAdded.
	Keywords []string
}

// State is one user's conversation. Keywords keep entry order and may
// contain duplicates; storage turns them into a set.
type State struct {
	Mode      Mode
	Keywords  []string
	UpdatedAt time.Time
}

// Manager keeps conversation states in memory, keyed by user ID.
type Manager struct {
	mu      sync.Mutex
	states  map[int64]*State
	now     func() time.Time
	timeout time.Duration
}

func NewManager(now func() time.Time, timeout time.Duration) *Manager {
	if now == nil {
		now = time.Now
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		states:  make(map[int64]*State),
		now:     now,
		timeout: timeout,
	}
}

// Begin starts keyword collection, silently dropping anything collected
// before.
func (m *Manager) Begin(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = &State{Mode: CollectingKeywords, UpdatedAt: m.now()}
}

// Reset returns the user to Idle. It reports whether a submission was in
// progress.
func (m *Manager) Reset(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[userID]
	delete(m.states, userID)
	return ok && state.Mode == CollectingKeywords && !m.expired(state)
}

// Complete clears the state after a submission was stored.
func (m *Manager) Complete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// Snapshot returns a copy of the user's state; a missing or expired state is
// reported as Idle.
func (m *Manager) Snapshot(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[userID]
	if !ok || m.expired(state) {
		return State{Mode: Idle}
	}
	return State{
		Mode:      state.Mode,
		Keywords:  append([]string(nil), state.Keywords...),
		UpdatedAt: state.UpdatedAt,
	}
}

// Receive applies an inbound text message to the user's state.
//
// A link while collecting with no keywords leaves the state untouched. A
// link with keywords yields IntentFinalize but keeps the state; call Complete
// once the submission is stored so a failed store can be retried.
func (m *Manager) Receive(userID int64, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Intent: IntentIgnore}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[userID]
	if ok && m.expired(state) {
		delete(m.states, userID)
		ok = false
	}
	collecting := ok && state.Mode == CollectingKeywords

	switch {
	case Classify(text) == KindLink && !collecting:
		return Outcome{Intent: IntentLinkWithoutBegin, Text: text}
	case Classify(text) == KindLink && len(state.Keywords) == 0:
		state.UpdatedAt = m.now()
		return Outcome{Intent: IntentNeedKeyword, Text: text}
	case Classify(text) == KindLink:
		state.UpdatedAt = m.now()
		return Outcome{Intent: IntentFinalize, Text: text, Keywords: append([]string(nil), state.Keywords...)}
	case collecting:
		state.Keywords = append(state.Keywords, text)
		state.UpdatedAt = m.now()
		return Outcome{Intent: IntentKeywordAdded, Text: text, Keywords: append([]string(nil), state.Keywords...)}
	default:
		return Outcome{Intent: IntentQuery, Text: text}
	}
}

func (m *Manager) expired(state *State) bool {
	return !m.now().Before(state.UpdatedAt.Add(m.timeout))
}

// SweepExpired drops states idle for longer than the timeout.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for userID, state := range m.states {
		if m.expired(state) {
			delete(m.states, userID)
			removed++
		}
	}
	return removed
}

func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(SweeperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepExpired()
		}
	}
}
