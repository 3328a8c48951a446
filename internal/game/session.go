package game

import (
	"context"
	"sync"
)

// ChannelRef identifies the channel a session is bound to. At most one
// session lives per ref. On Telegram both parts carry the chat id; the
// two-part key keeps sessions separable on platforms that split a
// community into channels.
type ChannelRef struct {
	Community int64
	Channel   int64
}

// Player - one lobby member. Alive is reserved for a future ejection
// rule and stays true under the current rules.
type Player struct {
	UserID int64
	Alive  bool
}

// RoundRecord is an immutable snapshot of one completed round.
type RoundRecord struct {
	Round int
	Clues map[int64]string
}

// TimeoutClue is recorded for a player whose turn window elapsed.
const TimeoutClue = "… (timed out)"

// Session owns all mutable state of one game. Every read-modify-write
// goes through mu; notifications are sent only after mu is released.
type Session struct {
	Community int64
	Channel   int64
	HostID    int64

	mu sync.Mutex

	started bool

	players   map[int64]*Player
	joinOrder []int64 // fixed turn order, never reordered

	secretWord string
	imposters  map[int64]struct{}

	roundNo      int
	currentClues map[int64]string
	history      []RoundRecord

	// expecting is the turn cursor (0 = nobody); clueSignal is armed by
	// the scheduler for the duration of one turn window and fired by an
	// accepted submission.
	expecting  int64
	clueSignal chan struct{}

	votingOpen bool
	votes      map[int64]int64 // voter -> target, 0 = skip

	// cancel aborts the round loop and the vote finalizer.
	cancel context.CancelFunc
}

func newSession(ref ChannelRef, hostID int64) *Session {
	s := &Session{
		Community:    ref.Community,
		Channel:      ref.Channel,
		HostID:       hostID,
		players:      make(map[int64]*Player),
		currentClues: make(map[int64]string),
		votes:        make(map[int64]int64),
	}
	s.players[hostID] = &Player{UserID: hostID, Alive: true}
	s.joinOrder = append(s.joinOrder, hostID)
	return s
}

// Ref returns the registry key of this session.
func (s *Session) Ref() ChannelRef {
	return ChannelRef{Community: s.Community, Channel: s.Channel}
}

// turnOrderLocked returns the fixed order: join order filtered by the
// alive flag. Currently always the full roster. Callers hold mu.
func (s *Session) turnOrderLocked() []int64 {
	order := make([]int64, 0, len(s.joinOrder))
	for _, uid := range s.joinOrder {
		if p, ok := s.players[uid]; ok && p.Alive {
			order = append(order, uid)
		}
	}
	return order
}

func (s *Session) lobbyViewLocked() LobbyView {
	return LobbyView{
		Host:  s.HostID,
		Order: append([]int64(nil), s.joinOrder...),
	}
}

func (s *Session) impostersLocked() []int64 {
	// reveal in join order, not map order
	out := make([]int64, 0, len(s.imposters))
	for _, uid := range s.joinOrder {
		if _, ok := s.imposters[uid]; ok {
			out = append(out, uid)
		}
	}
	return out
}

// cancelLocked stops any background round loop or vote finalizer.
// Callers hold mu.
func (s *Session) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
