package game

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/EndiD-D/Imposter/internal/config"
)

// Manager is the game service behind the platform handlers. It owns
// the registry, the word pool and the random source, and it runs the
// per-session round loop and vote window as background tasks.
type Manager struct {
	cfg      *config.Config
	registry *Registry
	pres     Presenter
	words    []string
	store    ResultStore // may be nil

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ Service = (*Manager)(nil)

func NewManager(cfg *config.Config, words []string, pres Presenter, store ResultStore) *Manager {
	return &Manager{
		cfg:      cfg,
		registry: NewRegistry(),
		pres:     pres,
		words:    words,
		store:    store,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewManagerWithRand is NewManager with a caller-supplied random
// source, so word and role assignment is reproducible under test.
func NewManagerWithRand(cfg *config.Config, words []string, pres Presenter, store ResultStore, rng *rand.Rand) *Manager {
	m := NewManager(cfg, words, pres, store)
	m.rng = rng
	return m
}

// Registry exposes the session registry, mainly for tests.
func (m *Manager) Registry() *Registry { return m.registry }

// CreateLobby opens a fresh lobby with hostID as host and first member.
func (m *Manager) CreateLobby(ref ChannelRef, hostID int64) error {
	s, err := m.registry.Create(ref, hostID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	view := s.lobbyViewLocked()
	s.mu.Unlock()

	log.Printf("[LOBBY] created in %d/%d by host %d", ref.Community, ref.Channel, hostID)
	m.pres.LobbyUpdated(ref, view)
	return nil
}

// Join adds a player to the lobby.
func (m *Manager) Join(ref ChannelRef, userID int64) error {
	s := m.registry.Get(ref)
	if s == nil {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if _, ok := s.players[userID]; ok {
		s.mu.Unlock()
		return ErrAlreadyJoined
	}
	s.players[userID] = &Player{UserID: userID, Alive: true}
	s.joinOrder = append(s.joinOrder, userID)
	view := s.lobbyViewLocked()
	s.mu.Unlock()

	m.pres.LobbyUpdated(ref, view)
	return nil
}

// Leave removes a player from the lobby. If the host leaves, the whole
// lobby is torn down and lobbyClosed is true.
func (m *Manager) Leave(ref ChannelRef, userID int64) (lobbyClosed bool, err error) {
	s := m.registry.Get(ref)
	if s == nil {
		return false, ErrNoActiveSession
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return false, ErrNotInLobby
	}
	if _, ok := s.players[userID]; !ok {
		s.mu.Unlock()
		return false, ErrNotInLobby
	}

	if userID == s.HostID {
		s.cancelLocked()
		s.mu.Unlock()
		m.registry.Remove(ref)
		log.Printf("[LOBBY] host %d left, lobby %d/%d closed", userID, ref.Community, ref.Channel)
		return true, nil
	}

	delete(s.players, userID)
	// splice out of the join order, keeping the rest untouched
	for i, uid := range s.joinOrder {
		if uid == userID {
			s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
			break
		}
	}
	view := s.lobbyViewLocked()
	s.mu.Unlock()

	m.pres.LobbyUpdated(ref, view)
	return false, nil
}

// StartOptions validates that userID may start the game now and
// returns the selectable imposter counts (1, or 1 and 2 on a big
// enough roster). Mutates nothing.
func (m *Manager) StartOptions(ref ChannelRef, userID int64) ([]int, error) {
	s := m.registry.Get(ref)
	if s == nil {
		return nil, ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if userID != s.HostID {
		return nil, ErrNotHost
	}
	if s.started {
		return nil, ErrAlreadyStarted
	}
	if len(s.players) < m.cfg.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}
	if len(s.players) >= m.cfg.AllowTwoImpostersAt {
		return []int{1, 2}, nil
	}
	return []int{1}, nil
}

// Start flips the session into the started state, assigns the secret
// word and the imposters, and launches the round loop. An imposter
// count outside the currently valid options falls back to 1.
func (m *Manager) Start(ref ChannelRef, userID int64, imposterCount int) error {
	s := m.registry.Get(ref)
	if s == nil {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	if userID != s.HostID {
		s.mu.Unlock()
		return ErrNotHost
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if len(s.players) < m.cfg.MinPlayers {
		s.mu.Unlock()
		return ErrNotEnoughPlayers
	}

	if imposterCount != 2 || len(s.players) < m.cfg.AllowTwoImpostersAt {
		imposterCount = 1
	}

	s.started = true
	m.rngMu.Lock()
	s.secretWord = pickWord(m.rng, m.words)
	s.imposters = pickImposters(m.rng, s.joinOrder, imposterCount)
	m.rngMu.Unlock()

	s.roundNo = 0
	s.history = nil
	s.currentClues = make(map[int64]string)
	s.votingOpen = false
	s.votes = make(map[int64]int64)
	s.expecting = 0

	// no two round loops per session
	s.cancelLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	order := s.turnOrderLocked()
	s.mu.Unlock()

	log.Printf("[GAME] started in %d/%d: %d players, %d imposter(s)",
		ref.Community, ref.Channel, len(order), imposterCount)
	m.pres.GameStarted(ref, order, m.cfg.RoundsBeforeVote)
	go m.runGame(ctx, s)
	return nil
}

// EndGame is the host's kill switch: cancels background tasks and
// removes the session, whatever phase it is in.
func (m *Manager) EndGame(ref ChannelRef, userID int64) error {
	s := m.registry.Get(ref)
	if s == nil {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	if userID != s.HostID {
		s.mu.Unlock()
		return ErrNotHost
	}
	s.votingOpen = false
	s.cancelLocked()
	s.mu.Unlock()

	m.registry.Remove(ref)
	log.Printf("[GAME] ended by host %d in %d/%d", userID, ref.Community, ref.Channel)
	return nil
}

// RevealRole answers a player's private role request.
func (m *Manager) RevealRole(ref ChannelRef, userID int64) (RoleInfo, error) {
	s := m.registry.Get(ref)
	if s == nil {
		return RoleInfo{}, ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return RoleInfo{}, ErrNoActiveSession
	}
	if _, ok := s.players[userID]; !ok {
		return RoleInfo{}, ErrNotAPlayer
	}
	if _, ok := s.imposters[userID]; ok {
		return RoleInfo{Imposter: true}, nil
	}
	return RoleInfo{Imposter: false, Word: s.secretWord}, nil
}

// SubmitClue records userID's clue for the current turn. Rejections
// leave the turn open; an accepted clue wakes the scheduler.
func (m *Manager) SubmitClue(ref ChannelRef, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyClue
	}
	if utf8.RuneCountInString(text) > m.cfg.MaxClueLen {
		return ErrClueTooLong
	}

	s := m.registry.Get(ref)
	if s == nil {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	if s.votingOpen {
		s.mu.Unlock()
		return ErrVotingInProgress
	}
	if _, ok := s.players[userID]; !ok {
		s.mu.Unlock()
		return ErrNotAPlayer
	}
	if s.expecting != userID {
		s.mu.Unlock()
		return ErrNotYourTurn
	}
	if _, ok := s.currentClues[userID]; ok {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if strings.EqualFold(text, s.secretWord) {
		s.mu.Unlock()
		return ErrExactWord
	}

	s.currentClues[userID] = text
	signal := s.clueSignal
	s.mu.Unlock()

	if signal != nil {
		select {
		case signal <- struct{}{}:
		default:
		}
	}
	m.pres.ClueSubmitted(ref, userID, text)
	return nil
}

// HostOf reports the host of the session at ref, if one exists.
func (m *Manager) HostOf(ref ChannelRef) (int64, bool) {
	s := m.registry.Get(ref)
	if s == nil {
		return 0, false
	}
	return s.HostID, true
}

// recordResult persists the outcome if a store is configured. Best
// effort only.
func (m *Manager) recordResult(rec GameRecord) {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.RecordGame(ctx, rec); err != nil {
		log.Printf("[STORE] failed to record game for %d/%d: %v", rec.Community, rec.Channel, err)
	}
}
