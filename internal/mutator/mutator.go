// Package mutator implements the read-modify-write cycle every table
// mutation goes through. The read and the write are two independent
// channel operations with no transaction around them: two clients that
// patch from the same pre-state overwrite each other, and the later
// write wins.
package mutator

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/ndallagnol/go-tabletop/internal/state"
	"github.com/ndallagnol/go-tabletop/internal/table"
	"github.com/ndallagnol/go-tabletop/internal/types"
)

type ListMutator struct {
	log *log.Logger
	ch  state.Channel
}

func NewListMutator(logger *log.Logger, ch state.Channel) *ListMutator {
	return &ListMutator{log: logger, ch: ch}
}

// Patch applies the fields onto the object whose id matches objectId,
// leaves every other object untouched, and writes the whole list back.
// A missing room document is a silent no-op.
func (m *ListMutator) Patch(roomId, objectId string, p table.ObjectPatch) error {
	st, err := m.ch.State(roomId)
	if errors.Is(err, state.ErrStateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	objs := make([]table.Object, len(st.TableObjects))
	for i, o := range st.TableObjects {
		if o.Id == objectId {
			o = p.Apply(o)
		}
		objs[i] = o
	}

	return m.ch.UpdateState(roomId, state.Update{TableObjects: &objs})
}

// AddSeat appends a new vacant seat numbered after the existing ones.
func (m *ListMutator) AddSeat(roomId string) error {
	st, err := m.ch.State(roomId)
	if errors.Is(err, state.ErrStateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	seat := table.NewSeat(len(table.Seats(st.TableObjects)) + 1)
	objs := append(st.TableObjects, seat)

	return m.ch.UpdateState(roomId, state.Update{TableObjects: &objs})
}

// RemoveSeat removes the last seat-typed object in current order,
// whether or not someone is sitting in it.
func (m *ListMutator) RemoveSeat(roomId string) error {
	st, err := m.ch.State(roomId)
	if errors.Is(err, state.ErrStateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	idx := -1
	for i, o := range st.TableObjects {
		if o.IsSeat() {
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}

	objs := append(st.TableObjects[:idx], st.TableObjects[idx+1:]...)

	return m.ch.UpdateState(roomId, state.Update{TableObjects: &objs})
}

// Reset clears the table and the deck placeholder in one blind update,
// without reading first.
func (m *ListMutator) Reset(roomId string) error {
	objs := []table.Object{}
	decks := map[string]json.RawMessage{}

	return m.ch.UpdateState(roomId, state.Update{TableObjects: &objs, Decks: &decks})
}

func (m *ListMutator) ClaimSeat(roomId, seatId string, user types.User) error {
	name := user.Username
	if name == "" {
		name = "?"
	}
	return m.Patch(roomId, seatId, table.ObjectPatch{
		Occupant: &table.Occupant{UserId: user.Id, Name: name},
	})
}

func (m *ListMutator) ReleaseSeat(roomId, seatId string) error {
	return m.Patch(roomId, seatId, table.ObjectPatch{Occupant: &table.Occupant{}})
}

func (m *ListMutator) MoveCard(roomId, cardId string, x, y float64) error {
	return m.Patch(roomId, cardId, table.ObjectPatch{X: &x, Y: &y})
}

func (m *ListMutator) FlipCard(roomId, cardId string, faceUp bool) error {
	return m.Patch(roomId, cardId, table.ObjectPatch{FaceUp: &faceUp})
}
