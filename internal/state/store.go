package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ndallagnol/go-tabletop/internal/database"
	"github.com/ndallagnol/go-tabletop/internal/stats"
	"github.com/ndallagnol/go-tabletop/internal/types"
)

// snapshotBuffer bounds how far a subscriber may fall behind before
// snapshots are dropped for it.
const snapshotBuffer = 16

// Store is the in-process document store. Documents are written through
// to the repository as JSON and lazily loaded on first access. Writes
// are serialized per store, but there is no read-then-write primitive:
// a caller's read and subsequent write are two independent operations.
type Store struct {
	log   *log.Logger
	db    database.TabletopRepository
	stats stats.StatsProvider

	mu       sync.Mutex
	docs     map[string]*document
	subs     map[string]map[*Subscription]struct{}
	roomSubs map[*RoomsSubscription]struct{}
}

type document struct {
	exists bool
	state  RoomState
}

func NewStore(logger *log.Logger, db database.TabletopRepository, su stats.StatsProvider) *Store {
	su.RegisterMetric(stats.ActiveSubscriptions)
	su.RegisterMetric(stats.StateWrites)
	su.RegisterMetric(stats.SnapshotsDelivered)
	su.RegisterMetric(stats.SnapshotsDropped)

	return &Store{
		log:      logger,
		db:       db,
		stats:    su,
		docs:     make(map[string]*document),
		subs:     make(map[string]map[*Subscription]struct{}),
		roomSubs: make(map[*RoomsSubscription]struct{}),
	}
}

// loadLocked returns the cached document for roomId, reading it from
// the repository on first access. Callers must hold s.mu.
func (s *Store) loadLocked(roomId string) (*document, error) {
	if doc, ok := s.docs[roomId]; ok {
		return doc, nil
	}

	raw, err := s.db.GetRoomState(roomId)
	if errors.Is(err, sql.ErrNoRows) {
		doc := &document{exists: false}
		s.docs[roomId] = doc
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load room state %q: %w", roomId, err)
	}

	var st RoomState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode room state %q: %w", roomId, err)
	}

	doc := &document{exists: true, state: st}
	s.docs[roomId] = doc
	return doc, nil
}

func (s *Store) State(roomId string) (RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked(roomId)
	if err != nil {
		return RoomState{}, err
	}
	if !doc.exists {
		return RoomState{}, ErrStateNotFound
	}

	return doc.state.Clone(), nil
}

func (s *Store) SetState(roomId string, st RoomState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(roomId, st); err != nil {
		return err
	}

	s.docs[roomId] = &document{exists: true, state: st.Clone()}
	s.broadcastLocked(roomId)
	return nil
}

func (s *Store) UpdateState(roomId string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked(roomId)
	if err != nil {
		return err
	}
	if !doc.exists {
		return ErrStateNotFound
	}

	st := doc.state.Clone()
	if u.TableObjects != nil {
		st.TableObjects = *u.TableObjects
	}
	if u.Decks != nil {
		st.Decks = *u.Decks
	}

	if err := s.persistLocked(roomId, st); err != nil {
		return err
	}

	doc.state = st.Clone()
	s.broadcastLocked(roomId)
	return nil
}

func (s *Store) DeleteState(roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteRoomState(roomId); err != nil {
		return fmt.Errorf("delete room state %q: %w", roomId, err)
	}

	s.docs[roomId] = &document{exists: false}
	s.broadcastLocked(roomId)
	return nil
}

func (s *Store) persistLocked(roomId string, st RoomState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode room state %q: %w", roomId, err)
	}

	if err := s.db.SaveRoomState(roomId, raw); err != nil {
		return fmt.Errorf("save room state %q: %w", roomId, err)
	}

	s.stats.Incr(stats.StateWrites)
	return nil
}

// broadcastLocked fans the current snapshot out to every subscriber of
// roomId. Sends never block: a full subscriber queue loses this
// snapshot, preserving per-subscriber ordering.
func (s *Store) broadcastLocked(roomId string) {
	subs := s.subs[roomId]
	if len(subs) == 0 {
		return
	}

	snap := s.snapshotLocked(roomId)
	for sub := range subs {
		s.deliver(sub, snap)
	}
}

func (s *Store) snapshotLocked(roomId string) Snapshot {
	snap := Snapshot{RoomId: roomId}
	if doc, ok := s.docs[roomId]; ok && doc.exists {
		snap.Exists = true
		snap.State = doc.state.Clone()
	}
	return snap
}

func (s *Store) deliver(sub *Subscription, snap Snapshot) {
	select {
	case sub.C <- snap:
		s.stats.Incr(stats.SnapshotsDelivered)
	default:
		s.log.Printf("subscriber for room %q is behind, dropping snapshot", snap.RoomId)
		s.stats.Incr(stats.SnapshotsDropped)
	}
}

func (s *Store) Subscribe(roomId string) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{C: make(chan Snapshot, snapshotBuffer)}
	sub.cancel = func(sub *Subscription) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[roomId][sub]; !ok {
			return
		}
		delete(s.subs[roomId], sub)
		if len(s.subs[roomId]) == 0 {
			delete(s.subs, roomId)
		}
		close(sub.C)
		s.stats.Decr(stats.ActiveSubscriptions)
	}

	if s.subs[roomId] == nil {
		s.subs[roomId] = make(map[*Subscription]struct{})
	}
	s.subs[roomId][sub] = struct{}{}
	s.stats.Incr(stats.ActiveSubscriptions)

	// the current document is delivered immediately, even when missing
	if _, err := s.loadLocked(roomId); err != nil {
		s.log.Printf("subscribe %q: %v", roomId, err)
	}
	s.deliver(sub, s.snapshotLocked(roomId))

	return sub
}

func (s *Store) SubscribeRooms() *RoomsSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &RoomsSubscription{C: make(chan []types.Room, snapshotBuffer)}
	sub.cancel = func(sub *RoomsSubscription) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.roomSubs[sub]; !ok {
			return
		}
		delete(s.roomSubs, sub)
		close(sub.C)
		s.stats.Decr(stats.ActiveSubscriptions)
	}

	s.roomSubs[sub] = struct{}{}
	s.stats.Incr(stats.ActiveSubscriptions)
	s.deliverRooms(sub, s.listRooms())

	return sub
}

func (s *Store) NotifyRoomsChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.roomSubs) == 0 {
		return
	}

	rooms := s.listRooms()
	for sub := range s.roomSubs {
		s.deliverRooms(sub, rooms)
	}
}

func (s *Store) listRooms() []types.Room {
	dbRooms, err := s.db.ListRooms()
	if err != nil {
		s.log.Println("list rooms:", err)
		return nil
	}

	rooms := make([]types.Room, len(dbRooms))
	for i, r := range dbRooms {
		rooms[i] = types.Room{
			Id:         r.Id,
			ExternalId: r.ExternalId,
			Name:       r.Name,
			OwnerId:    r.OwnerId,
			OwnerName:  r.OwnerName,
			CreatedAt:  r.CreatedAt,
		}
	}
	return rooms
}

func (s *Store) deliverRooms(sub *RoomsSubscription, rooms []types.Room) {
	select {
	case sub.C <- rooms:
		s.stats.Incr(stats.SnapshotsDelivered)
	default:
		s.log.Println("rooms subscriber is behind, dropping update")
		s.stats.Incr(stats.SnapshotsDropped)
	}
}
