// Package session holds the per-client room context: the derived
// read-only copy of the table objects, the access-control gate, the
// drag controller and the subscription lifecycle. It replaces what a
// browser client would keep in page-level state, with explicit
// creation on connect and teardown on disconnect.
package session

import (
	"errors"
	"log"
	"sync"

	"github.com/ndallagnol/go-tabletop/internal/mutator"
	"github.com/ndallagnol/go-tabletop/internal/state"
	"github.com/ndallagnol/go-tabletop/internal/table"
	"github.com/ndallagnol/go-tabletop/internal/types"
)

// ErrNotAllowed is returned when an operation fails the access gate.
var ErrNotAllowed = errors.New("operation not allowed")

// Notifier receives render triggers for a single session's client.
type Notifier interface {
	RoomSnapshot(view RoomView)
	RoomList(rooms []types.Room)
}

// RoomView is what the client renders: the object list with any drag
// overlay applied, plus the gate's output. Missing marks a room whose
// state document does not exist.
type RoomView struct {
	RoomId      string         `json:"room_id"`
	Missing     bool           `json:"missing,omitempty"`
	Objects     []table.Object `json:"objects"`
	IsRoomOwner bool           `json:"is_room_owner"`
	EditMode    bool           `json:"edit_mode"`
	Affordances Affordances    `json:"affordances"`
}

type Session struct {
	log      *log.Logger
	ch       state.Channel
	mut      *mutator.ListMutator
	user     types.User
	notifier Notifier

	mu          sync.Mutex
	roomId      string
	objects     []table.Object
	roomMissing bool
	ownerUserId int
	isRoomOwner bool
	editMode    bool
	drag        *cardDrag
	stateSub    *state.Subscription
	roomsSub    *state.RoomsSubscription
}

func New(logger *log.Logger, ch state.Channel, user types.User, n Notifier) *Session {
	return &Session{
		log:      logger,
		ch:       ch,
		mut:      mutator.NewListMutator(logger, ch),
		user:     user,
		notifier: n,
	}
}

func (s *Session) User() types.User { return s.user }

// JoinRoom switches the session to roomId. Any previous room-state
// subscription is cancelled first; at most one is active per session.
func (s *Session) JoinRoom(roomId string) {
	s.mu.Lock()
	if s.stateSub != nil {
		s.stateSub.Cancel()
		s.stateSub = nil
	}
	s.roomId = roomId
	s.objects = nil
	s.roomMissing = false
	s.ownerUserId = 0
	s.isRoomOwner = false
	s.drag = nil

	sub := s.ch.Subscribe(roomId)
	s.stateSub = sub
	s.mu.Unlock()

	go s.pumpSnapshots(roomId, sub)
}

// LeaveRoom tears down the room-state subscription and clears the
// derived state.
func (s *Session) LeaveRoom() {
	s.mu.Lock()
	sub := s.stateSub
	s.stateSub = nil
	s.roomId = ""
	s.objects = nil
	s.roomMissing = false
	s.ownerUserId = 0
	s.isRoomOwner = false
	s.drag = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// WatchRooms subscribes to the rooms directory, cancelling any previous
// list subscription. Only rooms owned by the session's user are
// forwarded; the filter runs here, not in the store.
func (s *Session) WatchRooms() {
	s.mu.Lock()
	if s.roomsSub != nil {
		s.roomsSub.Cancel()
	}
	sub := s.ch.SubscribeRooms()
	s.roomsSub = sub
	s.mu.Unlock()

	go s.pumpRooms(sub)
}

// Close tears down every subscription held by the session.
func (s *Session) Close() {
	s.LeaveRoom()

	s.mu.Lock()
	sub := s.roomsSub
	s.roomsSub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

func (s *Session) pumpSnapshots(roomId string, sub *state.Subscription) {
	for snap := range sub.C {
		s.applySnapshot(roomId, snap)
	}
}

func (s *Session) pumpRooms(sub *state.RoomsSubscription) {
	for rooms := range sub.C {
		var mine []types.Room
		for _, r := range rooms {
			if r.OwnerId == s.user.Id {
				mine = append(mine, r)
			}
		}
		s.notifier.RoomList(mine)
	}
}

// applySnapshot rebuilds the derived copy wholesale from the snapshot.
// The drag overlay survives; it belongs to the render layer, not to the
// authoritative state.
func (s *Session) applySnapshot(roomId string, snap state.Snapshot) {
	s.mu.Lock()
	if s.roomId != roomId {
		// stale delivery from a subscription we already left
		s.mu.Unlock()
		return
	}

	if snap.Exists {
		s.objects = snap.State.TableObjects
		s.roomMissing = false
		s.ownerUserId = snap.State.OwnerUserId
		s.isRoomOwner = s.ownerUserId == s.user.Id
	} else {
		s.objects = nil
		s.roomMissing = true
		s.ownerUserId = 0
		s.isRoomOwner = false
	}
	view := s.viewLocked()
	s.mu.Unlock()

	s.notifier.RoomSnapshot(view)
}

// viewLocked composes the authoritative objects with the drag overlay.
// Callers must hold s.mu.
func (s *Session) viewLocked() RoomView {
	objs := make([]table.Object, len(s.objects))
	copy(objs, s.objects)
	if s.drag != nil {
		for i := range objs {
			if objs[i].Id == s.drag.objectId {
				objs[i].X = s.drag.x
				objs[i].Y = s.drag.y
			}
		}
	}

	return RoomView{
		RoomId:      s.roomId,
		Missing:     s.roomMissing,
		Objects:     objs,
		IsRoomOwner: s.isRoomOwner,
		EditMode:    s.editMode,
		Affordances: s.affordancesLocked(),
	}
}

func (s *Session) affordancesLocked() Affordances {
	return AffordancesFor(s.user.Id, s.ownerUserId, s.editMode)
}

// Objects returns the composed render view of the object list.
func (s *Session) Objects() []table.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked().Objects
}

// ToggleEdit flips the session-local edit mode. Owner only; the flag is
// never persisted and resets when the session ends.
func (s *Session) ToggleEdit() error {
	s.mu.Lock()
	if !s.affordancesLocked().CanToggleEdit {
		s.mu.Unlock()
		return ErrNotAllowed
	}
	s.editMode = !s.editMode
	view := s.viewLocked()
	s.mu.Unlock()

	s.notifier.RoomSnapshot(view)
	return nil
}

// ClaimSeat seats the session's user. Only a vacant seat can be taken;
// nothing stops a user from occupying several seats at once.
func (s *Session) ClaimSeat(seatId string) error {
	s.mu.Lock()
	roomId := s.roomId
	seat, ok := table.FindById(s.objects, seatId)
	s.mu.Unlock()

	if roomId == "" {
		return nil
	}
	if !ok || !seat.IsSeat() || seat.Occupied() {
		return ErrNotAllowed
	}

	return s.mut.ClaimSeat(roomId, seatId, s.user)
}

// ReleaseSeat vacates a seat. Allowed for its occupant and, as the
// free-a-seat control, for the room owner.
func (s *Session) ReleaseSeat(seatId string) error {
	s.mu.Lock()
	roomId := s.roomId
	owner := s.isRoomOwner
	seat, ok := table.FindById(s.objects, seatId)
	s.mu.Unlock()

	if roomId == "" {
		return nil
	}
	if !ok || !seat.IsSeat() {
		return ErrNotAllowed
	}
	if seat.OccupantUserId != s.user.Id && !owner {
		return ErrNotAllowed
	}

	return s.mut.ReleaseSeat(roomId, seatId)
}

// FlipCard toggles a card's face. Any user at the table may flip.
func (s *Session) FlipCard(cardId string) error {
	s.mu.Lock()
	roomId := s.roomId
	card, ok := table.FindById(s.objects, cardId)
	s.mu.Unlock()

	if roomId == "" {
		return nil
	}
	if !ok || !card.IsCard() {
		return ErrNotAllowed
	}

	return s.mut.FlipCard(roomId, cardId, !card.FaceUp)
}

func (s *Session) AddSeat() error {
	roomId, err := s.ownerOp(func(a Affordances) bool { return a.CanAddSeat })
	if err != nil || roomId == "" {
		return err
	}
	return s.mut.AddSeat(roomId)
}

func (s *Session) RemoveSeat() error {
	roomId, err := s.ownerOp(func(a Affordances) bool { return a.CanRemoveSeat })
	if err != nil || roomId == "" {
		return err
	}
	return s.mut.RemoveSeat(roomId)
}

func (s *Session) Reset() error {
	roomId, err := s.ownerOp(func(a Affordances) bool { return a.CanReset })
	if err != nil || roomId == "" {
		return err
	}
	return s.mut.Reset(roomId)
}

func (s *Session) ownerOp(allowed func(Affordances) bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomId == "" {
		return "", nil
	}
	if !allowed(s.affordancesLocked()) {
		return "", ErrNotAllowed
	}
	return s.roomId, nil
}
