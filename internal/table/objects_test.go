package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeat(t *testing.T) {
	seat := NewSeat(3)

	assert.True(t, seat.IsSeat(), "expected new object to be a seat")
	assert.Equal(t, "Jogador 3", seat.BaseLabel, "expected base label to carry the seat number")
	assert.Regexp(t, `^seat-3-\d+$`, seat.Id, "expected id to be seat-<num>-<millis>")
	assert.False(t, seat.Occupied(), "expected new seat to be vacant")
}

func Test_Occupied(t *testing.T) {
	seat := Object{Id: "seat-1-1", Type: ObjectSeat}
	assert.False(t, seat.Occupied(), "expected seat with zero occupant to be vacant")

	seat.OccupantUserId = 42
	seat.OccupantName = "testuser"
	assert.True(t, seat.Occupied(), "expected seat with occupant to be occupied")
}

func Test_Seats_Cards_FindById(t *testing.T) {
	objs := []Object{
		{Id: "seat-1-1", Type: ObjectSeat},
		{Id: "card-1", Type: ObjectCard},
		{Id: "seat-2-1", Type: ObjectSeat},
		{Id: "card-2", Type: ObjectCard},
	}

	seats := Seats(objs)
	assert.Len(t, seats, 2, "expected 2 seats")
	assert.Equal(t, "seat-1-1", seats[0].Id, "expected seats in original order")
	assert.Equal(t, "seat-2-1", seats[1].Id, "expected seats in original order")

	cards := Cards(objs)
	assert.Len(t, cards, 2, "expected 2 cards")
	assert.Equal(t, "card-1", cards[0].Id, "expected cards in original order")

	obj, ok := FindById(objs, "card-2")
	assert.True(t, ok, "expected to find card-2")
	assert.Equal(t, "card-2", obj.Id, "expected matching object")

	_, ok = FindById(objs, "nope")
	assert.False(t, ok, "expected lookup of unknown id to fail")
}

func TestObjectPatch_Apply(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *bool { return &v }

	tcases := []struct {
		name     string
		obj      Object
		patch    ObjectPatch
		expected Object
	}{
		{
			name:     "empty patch leaves object untouched",
			obj:      Object{Id: "card-1", Type: ObjectCard, X: 10, Y: 20, FaceUp: true},
			patch:    ObjectPatch{},
			expected: Object{Id: "card-1", Type: ObjectCard, X: 10, Y: 20, FaceUp: true},
		},
		{
			name:     "position patch moves card only",
			obj:      Object{Id: "card-1", Type: ObjectCard, X: 10, Y: 20, FaceUp: true},
			patch:    ObjectPatch{X: f(60), Y: f(40)},
			expected: Object{Id: "card-1", Type: ObjectCard, X: 60, Y: 40, FaceUp: true},
		},
		{
			name:     "face patch flips card in place",
			obj:      Object{Id: "card-1", Type: ObjectCard, X: 10, Y: 20},
			patch:    ObjectPatch{FaceUp: b(true)},
			expected: Object{Id: "card-1", Type: ObjectCard, X: 10, Y: 20, FaceUp: true},
		},
		{
			name:     "occupant patch claims seat",
			obj:      Object{Id: "seat-1-1", Type: ObjectSeat, BaseLabel: "Jogador 1"},
			patch:    ObjectPatch{Occupant: &Occupant{UserId: 7, Name: "testuser"}},
			expected: Object{Id: "seat-1-1", Type: ObjectSeat, BaseLabel: "Jogador 1", OccupantUserId: 7, OccupantName: "testuser"},
		},
		{
			name:     "zero occupant vacates seat",
			obj:      Object{Id: "seat-1-1", Type: ObjectSeat, BaseLabel: "Jogador 1", OccupantUserId: 7, OccupantName: "testuser"},
			patch:    ObjectPatch{Occupant: &Occupant{}},
			expected: Object{Id: "seat-1-1", Type: ObjectSeat, BaseLabel: "Jogador 1"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.patch.Apply(tc.obj)
			assert.Equal(t, tc.expected, got, "expected patched object to match")
		})
	}
}

func TestObjectPatch_Apply_DoesNotMutateInput(t *testing.T) {
	x := 99.0
	obj := Object{Id: "card-1", Type: ObjectCard, X: 1}

	got := ObjectPatch{X: &x}.Apply(obj)

	assert.Equal(t, 99.0, got.X, "expected returned copy to carry the patch")
	assert.Equal(t, 1.0, obj.X, fmt.Sprintf("expected original object to be unchanged, got X=%v", obj.X))
}
