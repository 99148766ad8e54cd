package state

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/ndallagnol/go-tabletop/internal/database"
	"github.com/ndallagnol/go-tabletop/internal/stats"
	"github.com/ndallagnol/go-tabletop/internal/table"
	"github.com/ndallagnol/go-tabletop/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestStore(t *testing.T, db database.TabletopRepository) *Store {
	su := &stats.MockStatsUpdater{}
	su.On("RegisterMetric", mock.Anything).Times(4)
	su.On("Incr", mock.Anything).Maybe()
	su.On("Decr", mock.Anything).Maybe()

	return NewStore(testutil.TestLogger(t), db, su)
}

// recvSnapshot pulls the next snapshot off a subscription or fails the
// test after a short wait.
func recvSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap := <-sub.C:
		return snap
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout: no snapshot delivered")
		return Snapshot{}
	}
}

func TestStore_State_NotFound(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetRoomState", "missing-room").Return(nil, sql.ErrNoRows).Once()

	s := newTestStore(t, mockRepo)

	_, err := s.State("missing-room")
	assert.ErrorIs(t, err, ErrStateNotFound, "expected ErrStateNotFound for missing document")

	// second read is served from the cached miss, no repository call
	_, err = s.State("missing-room")
	assert.ErrorIs(t, err, ErrStateNotFound, "expected cached miss on second read")
}

func TestStore_SetState_State(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil).Once()

	s := newTestStore(t, mockRepo)

	st := NewRoomState(1)
	st.TableObjects = []table.Object{{Id: "card-1", Type: table.ObjectCard, X: 10, Y: 20}}

	err := s.SetState("room1", st)
	assert.NoError(t, err, "expected SetState to succeed")

	got, err := s.State("room1")
	assert.NoError(t, err, "expected State to succeed after SetState")
	assert.Equal(t, st.TableObjects, got.TableObjects, "expected stored objects to round trip")
	assert.Equal(t, 1, got.OwnerUserId, "expected owner to round trip")
}

func TestStore_State_LoadsFromRepository(t *testing.T) {
	st := NewRoomState(7)
	st.TableObjects = []table.Object{{Id: "seat-1-1", Type: table.ObjectSeat, BaseLabel: "Jogador 1"}}
	raw, err := json.Marshal(st)
	assert.NoError(t, err)

	mockRepo := &database.MockTabletopRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetRoomState", "room1").Return(raw, nil).Once()

	s := newTestStore(t, mockRepo)

	got, err := s.State("room1")
	assert.NoError(t, err, "expected State to succeed")
	assert.Equal(t, st, got, "expected document loaded from repository")

	// second read hits the cache
	_, err = s.State("room1")
	assert.NoError(t, err, "expected cached read to succeed")
}

func TestStore_UpdateState_ReplacesListWholesale(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil)

	s := newTestStore(t, mockRepo)

	initial := NewRoomState(1)
	initial.TableObjects = []table.Object{
		{Id: "seat-1-1", Type: table.ObjectSeat},
		{Id: "card-1", Type: table.ObjectCard},
	}
	assert.NoError(t, s.SetState("room1", initial))

	replacement := []table.Object{{Id: "card-2", Type: table.ObjectCard}}
	err := s.UpdateState("room1", Update{TableObjects: &replacement})
	assert.NoError(t, err, "expected UpdateState to succeed")

	got, err := s.State("room1")
	assert.NoError(t, err)
	assert.Equal(t, replacement, got.TableObjects, "expected object list replaced wholesale")
	assert.Equal(t, initial.Decks, got.Decks, "expected untouched field to survive the merge")
	assert.Equal(t, 1, got.OwnerUserId, "expected owner to survive the merge")
}

func TestStore_UpdateState_NotFound(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	defer mockRepo.AssertExpectations(t)
	mockRepo.On("GetRoomState", "missing-room").Return(nil, sql.ErrNoRows).Once()

	s := newTestStore(t, mockRepo)

	objs := []table.Object{}
	err := s.UpdateState("missing-room", Update{TableObjects: &objs})
	assert.ErrorIs(t, err, ErrStateNotFound, "expected update of missing document to fail")
	mockRepo.AssertNotCalled(t, "SaveRoomState", mock.Anything, mock.Anything)
}

func TestStore_Subscribe_InitialSnapshot(t *testing.T) {
	t.Run("existing document", func(t *testing.T) {
		mockRepo := &database.MockTabletopRepository{}
		mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil)

		s := newTestStore(t, mockRepo)
		assert.NoError(t, s.SetState("room1", NewRoomState(1)))

		sub := s.Subscribe("room1")
		defer sub.Cancel()

		snap := recvSnapshot(t, sub)
		assert.True(t, snap.Exists, "expected initial snapshot of existing document")
		assert.Equal(t, "room1", snap.RoomId, "expected snapshot to carry the room id")
		assert.Equal(t, 1, snap.State.OwnerUserId, "expected snapshot to carry the document")
	})

	t.Run("missing document", func(t *testing.T) {
		mockRepo := &database.MockTabletopRepository{}
		mockRepo.On("GetRoomState", "missing-room").Return(nil, sql.ErrNoRows).Once()

		s := newTestStore(t, mockRepo)

		sub := s.Subscribe("missing-room")
		defer sub.Cancel()

		snap := recvSnapshot(t, sub)
		assert.False(t, snap.Exists, "expected initial snapshot to mark the document missing")
	})
}

func TestStore_Subscribe_DeliversWritesInOrder(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil)

	s := newTestStore(t, mockRepo)
	assert.NoError(t, s.SetState("room1", NewRoomState(1)))

	sub := s.Subscribe("room1")
	defer sub.Cancel()
	recvSnapshot(t, sub) // initial

	for i := 1; i <= 3; i++ {
		objs := make([]table.Object, i)
		for j := range objs {
			objs[j] = table.Object{Id: "card-1", Type: table.ObjectCard}
		}
		assert.NoError(t, s.UpdateState("room1", Update{TableObjects: &objs}))
	}

	for i := 1; i <= 3; i++ {
		snap := recvSnapshot(t, sub)
		assert.Lenf(t, snap.State.TableObjects, i, "expected snapshot %d in write order", i)
	}
}

func TestStore_Subscription_Cancel(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil)

	s := newTestStore(t, mockRepo)
	assert.NoError(t, s.SetState("room1", NewRoomState(1)))

	sub := s.Subscribe("room1")
	recvSnapshot(t, sub)

	sub.Cancel()
	// double cancel is safe
	sub.Cancel()

	_, ok := <-sub.C
	assert.False(t, ok, "expected subscription channel to be closed after cancel")

	// writes after cancel go nowhere
	objs := []table.Object{}
	assert.NoError(t, s.UpdateState("room1", Update{TableObjects: &objs}))
}

func TestStore_DeleteState_NotifiesSubscribers(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil)
	mockRepo.On("DeleteRoomState", "room1").Return(nil).Once()

	s := newTestStore(t, mockRepo)
	assert.NoError(t, s.SetState("room1", NewRoomState(1)))

	sub := s.Subscribe("room1")
	defer sub.Cancel()
	recvSnapshot(t, sub)

	assert.NoError(t, s.DeleteState("room1"))

	snap := recvSnapshot(t, sub)
	assert.False(t, snap.Exists, "expected delete to deliver a missing-document snapshot")

	_, err := s.State("room1")
	assert.ErrorIs(t, err, ErrStateNotFound, "expected reads after delete to fail")
}

func TestStore_SubscribeRooms_NotifyRoomsChanged(t *testing.T) {
	dbRooms := []database.Room{
		{Id: 1, ExternalId: "abc123", Name: "Sala sem nome", OwnerId: 1, OwnerName: "testuser"},
	}

	mockRepo := &database.MockTabletopRepository{}
	mockRepo.On("ListRooms").Return(dbRooms, nil)

	s := newTestStore(t, mockRepo)

	sub := s.SubscribeRooms()
	defer sub.Cancel()

	select {
	case rooms := <-sub.C:
		assert.Len(t, rooms, 1, "expected initial room list")
		assert.Equal(t, "abc123", rooms[0].ExternalId, "expected room converted from repository row")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout: no initial room list delivered")
	}

	s.NotifyRoomsChanged()

	select {
	case rooms := <-sub.C:
		assert.Len(t, rooms, 1, "expected room list on directory change")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout: no room list delivered after notify")
	}
}

func TestStore_Deliver_DropsWhenSubscriberIsBehind(t *testing.T) {
	mockRepo := &database.MockTabletopRepository{}
	mockRepo.On("SaveRoomState", "room1", mock.Anything).Return(nil)

	s := newTestStore(t, mockRepo)
	assert.NoError(t, s.SetState("room1", NewRoomState(1)))

	sub := s.Subscribe("room1")
	defer sub.Cancel()

	// fill the buffer without draining; the initial snapshot took one slot
	objs := []table.Object{}
	for i := 0; i < snapshotBuffer+5; i++ {
		assert.NoError(t, s.UpdateState("room1", Update{TableObjects: &objs}))
	}

	drained := 0
	for {
		select {
		case <-sub.C:
			drained++
			continue
		default:
		}
		break
	}

	assert.Equal(t, snapshotBuffer, drained, "expected a full buffer and nothing more")
}
