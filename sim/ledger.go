package sim

import (
	"maps"
	"sort"
	"sync"
)

// ledger is one player's state. mu covers every read-check-mutate sequence
// on the ledger.
type ledger struct {
	mu sync.Mutex

	player        string
	funds         float64
	holdings      map[string]int
	day           int
	lastSalaryDay int
}

func (l *ledger) snapshot() LedgerSnapshot {
	return LedgerSnapshot{
		Player:        l.player,
		Funds:         l.funds,
		Holdings:      maps.Clone(l.holdings),
		Day:           l.day,
		LastSalaryDay: l.lastSalaryDay,
	}
}

// locked runs fn while holding l.mu.
func (l *ledger) locked(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

// ledgerStore creates ledgers lazily: the first reference to a player
// builds its ledger from the configured defaults, exactly once.
type ledgerStore struct {
	mu      sync.RWMutex
	ledgers map[string]*ledger
	create  func(player string) *ledger
}

func newLedgerStore(create func(player string) *ledger) *ledgerStore {
	return &ledgerStore{
		ledgers: make(map[string]*ledger),
		create:  create,
	}
}

func (s *ledgerStore) get(player string) *ledger {
	s.mu.RLock()
	l, ok := s.ledgers[player]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.ledgers[player]; ok {
		return l
	}
	l = s.create(player)
	s.ledgers[player] = l
	return l
}

func (s *ledgerStore) players() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.ledgers))
	for p := range s.ledgers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
