// Package state hosts the shared room-state documents. It behaves like a
// dumb remote document store: path-scoped get/set/merge-update plus a
// subscription primitive that delivers a full snapshot on every change.
// It applies no authorization and offers no compare-and-swap, so all
// merge logic lives with the callers.
package state

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/ndallagnol/go-tabletop/internal/table"
	"github.com/ndallagnol/go-tabletop/internal/types"
)

var ErrStateNotFound = errors.New("room state not found")

// RoomState is the single mutable shared document per room.
type RoomState struct {
	TableObjects []table.Object             `json:"table_objects"`
	Decks        map[string]json.RawMessage `json:"decks"`
	OwnerUserId  int                        `json:"owner_user_id"`
}

// NewRoomState returns the initial document written at room creation.
func NewRoomState(ownerUserId int) RoomState {
	return RoomState{
		TableObjects: []table.Object{},
		Decks:        map[string]json.RawMessage{},
		OwnerUserId:  ownerUserId,
	}
}

// Clone returns a deep copy so callers can never alias the stored doc.
func (s RoomState) Clone() RoomState {
	cp := s
	cp.TableObjects = make([]table.Object, len(s.TableObjects))
	copy(cp.TableObjects, s.TableObjects)
	cp.Decks = make(map[string]json.RawMessage, len(s.Decks))
	for k, v := range s.Decks {
		cp.Decks[k] = v
	}
	return cp
}

// Update is a shallow field merge. A non-nil field replaces the
// document's field wholesale: replacing TableObjects always replaces
// the entire sequence, never individual elements.
type Update struct {
	TableObjects *[]table.Object             `json:"table_objects,omitempty"`
	Decks        *map[string]json.RawMessage `json:"decks,omitempty"`
}

// Snapshot is the full current value of a room document as delivered to
// subscribers. Exists is false when the document is missing.
type Snapshot struct {
	RoomId string
	Exists bool
	State  RoomState
}

// Channel is the remote-document-store contract the rest of the system
// programs against.
type Channel interface {
	// State reads the current document, ErrStateNotFound if missing.
	State(roomId string) (RoomState, error)
	// SetState replaces the whole document, creating it if needed.
	SetState(roomId string, st RoomState) error
	// UpdateState shallow-merges non-nil fields onto an existing
	// document, ErrStateNotFound if missing.
	UpdateState(roomId string, u Update) error
	// DeleteState removes the document and notifies subscribers.
	DeleteState(roomId string) error
	// Subscribe delivers the current snapshot immediately and again on
	// every change, in write-arrival order, until cancelled.
	Subscribe(roomId string) *Subscription
	// SubscribeRooms watches the rooms collection the same way.
	SubscribeRooms() *RoomsSubscription
	// NotifyRoomsChanged fans the current room list out to rooms
	// subscribers after a directory mutation.
	NotifyRoomsChanged()
}

// Subscription delivers snapshots for one room document. C is closed by
// Cancel. A subscriber that falls behind loses snapshots, never order.
type Subscription struct {
	C chan Snapshot

	cancel   func(*Subscription)
	cancelMu sync.Once
}

func (s *Subscription) Cancel() {
	s.cancelMu.Do(func() {
		if s.cancel != nil {
			s.cancel(s)
		}
	})
}

// RoomsSubscription delivers the full rooms collection on every
// directory change.
type RoomsSubscription struct {
	C chan []types.Room

	cancel   func(*RoomsSubscription)
	cancelMu sync.Once
}

func (s *RoomsSubscription) Cancel() {
	s.cancelMu.Do(func() {
		if s.cancel != nil {
			s.cancel(s)
		}
	})
}
