package session

import "github.com/ndallagnol/go-tabletop/internal/table"

// cardDrag is the ephemeral local override for the one card being
// dragged. It never touches the state channel; the overlay is composed
// with the authoritative objects only at render time and committed in a
// single write on pointer release.
type cardDrag struct {
	objectId string
	offsetX  float64
	offsetY  float64
	x        float64
	y        float64
}

// PointerDown starts a drag on a card, capturing the pointer's offset
// to the card's top-left corner. Ignored when no room is joined or the
// id does not name a card.
func (s *Session) PointerDown(cardId string, px, py float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomId == "" {
		return
	}

	obj, ok := table.FindById(s.objects, cardId)
	if !ok || !obj.IsCard() {
		return
	}

	s.drag = &cardDrag{
		objectId: cardId,
		offsetX:  px - obj.X,
		offsetY:  py - obj.Y,
		x:        obj.X,
		y:        obj.Y,
	}
}

// PointerMove recomputes the dragged card's position locally and
// triggers a local re-render. No remote write happens here, so the
// feedback is instantaneous and invisible to other clients.
func (s *Session) PointerMove(px, py float64) {
	s.mu.Lock()
	if s.drag == nil {
		s.mu.Unlock()
		return
	}

	s.drag.x = px - s.drag.offsetX
	s.drag.y = py - s.drag.offsetY
	view := s.viewLocked()
	s.mu.Unlock()

	s.notifier.RoomSnapshot(view)
}

// PointerUp commits the final position through the mutator and returns
// the session to idle. The overlay is discarded; the committed value
// comes back through the subscription like any other remote change.
func (s *Session) PointerUp() error {
	s.mu.Lock()
	if s.drag == nil {
		s.mu.Unlock()
		return nil
	}

	roomId, d := s.roomId, s.drag
	s.drag = nil
	s.mu.Unlock()

	return s.mut.MoveCard(roomId, d.objectId, d.x, d.y)
}
