package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payment"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
)

type pointsKey struct {
	playerID string
	matchID  string
}

type tables struct {
	tournaments   map[string]tournament.Tournament
	matches       map[string]match.Match
	points        map[pointsKey]points.PlayerMatchPoints
	contests      map[string]contest.Contest
	teams         map[string]contest.Team
	rules         map[prize.Scope][]prize.StoredRule
	disbursements map[string]prize.Disbursement
	payments      map[string]payment.CapturedPayment
}

func newTables() tables {
	return tables{
		tournaments:   make(map[string]tournament.Tournament),
		matches:       make(map[string]match.Match),
		points:        make(map[pointsKey]points.PlayerMatchPoints),
		contests:      make(map[string]contest.Contest),
		teams:         make(map[string]contest.Team),
		rules:         make(map[prize.Scope][]prize.StoredRule),
		disbursements: make(map[string]prize.Disbursement),
		payments:      make(map[string]payment.CapturedPayment),
	}
}

// clone copies every table. Row values are replaced, never mutated, so a
// shallow copy per map is enough to roll back.
func (t tables) clone() tables {
	return tables{
		tournaments:   maps.Clone(t.tournaments),
		matches:       maps.Clone(t.matches),
		points:        maps.Clone(t.points),
		contests:      maps.Clone(t.contests),
		teams:         maps.Clone(t.teams),
		rules:         maps.Clone(t.rules),
		disbursements: maps.Clone(t.disbursements),
		payments:      maps.Clone(t.payments),
	}
}

// Store keeps every entity in process memory. Transactions are serialized
// and roll back by restoring a snapshot taken when they began. Writes made
// outside a transaction wait for the running one to finish, so a rollback
// never discards them.
type Store struct {
	mu   sync.RWMutex
	data tables

	txMu sync.Mutex
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

type txKey struct{}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == s {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}

func (s *Store) write(ctx context.Context, fn func(t *tables)) {
	if ctx.Value(txKey{}) != s {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

func (s *Store) Tournaments() *TournamentRepository { return &TournamentRepository{store: s} }

func (s *Store) Matches() *MatchRepository { return &MatchRepository{store: s} }

func (s *Store) Points() *PointsRepository { return &PointsRepository{store: s} }

func (s *Store) Contests() *ContestRepository { return &ContestRepository{store: s} }

func (s *Store) Teams() *TeamRepository { return &TeamRepository{store: s} }

func (s *Store) PrizeRules() *PrizeRuleRepository { return &PrizeRuleRepository{store: s} }

func (s *Store) Disbursements() *DisbursementRepository { return &DisbursementRepository{store: s} }

func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{store: s} }
