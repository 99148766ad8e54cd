// Package table defines the entities placed on a table surface and pure
// queries over an object list. Nothing here touches the state channel.
package table

import (
	"fmt"
	"time"
)

type ObjectType string

const (
	ObjectSeat ObjectType = "seat"
	ObjectCard ObjectType = "card"
)

// Object is the tagged union of everything that can sit on a table.
// Type selects which field group is meaningful; the others stay zero.
type Object struct {
	Id   string     `json:"id"`
	Type ObjectType `json:"type"`

	// seat fields
	BaseLabel      string `json:"base_label,omitempty"`
	OccupantUserId int    `json:"occupant_user_id,omitempty"`
	OccupantName   string `json:"occupant_name,omitempty"`

	// card fields
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	FaceUp bool    `json:"face_up"`
}

func (o Object) IsSeat() bool { return o.Type == ObjectSeat }
func (o Object) IsCard() bool { return o.Type == ObjectCard }

// Occupied reports whether a seat object is currently claimed.
func (o Object) Occupied() bool { return o.OccupantUserId != 0 }

// Seats returns the seat objects in their original order.
func Seats(objs []Object) []Object {
	var seats []Object
	for _, o := range objs {
		if o.IsSeat() {
			seats = append(seats, o)
		}
	}
	return seats
}

// Cards returns the card objects in their original order.
func Cards(objs []Object) []Object {
	var cards []Object
	for _, o := range objs {
		if o.IsCard() {
			cards = append(cards, o)
		}
	}
	return cards
}

func FindById(objs []Object, id string) (Object, bool) {
	for _, o := range objs {
		if o.Id == id {
			return o, true
		}
	}
	return Object{}, false
}

// Occupant identifies who holds a seat. The zero value vacates it.
type Occupant struct {
	UserId int    `json:"user_id"`
	Name   string `json:"name"`
}

// ObjectPatch is a shallow field-level patch. Nil fields leave the
// object untouched; a non-nil Occupant replaces both occupant fields
// at once, so &Occupant{} releases a seat.
type ObjectPatch struct {
	X        *float64  `json:"x,omitempty"`
	Y        *float64  `json:"y,omitempty"`
	FaceUp   *bool     `json:"face_up,omitempty"`
	Occupant *Occupant `json:"occupant,omitempty"`
}

// Apply merges the patch onto a copy of the object.
func (p ObjectPatch) Apply(o Object) Object {
	if p.X != nil {
		o.X = *p.X
	}
	if p.Y != nil {
		o.Y = *p.Y
	}
	if p.FaceUp != nil {
		o.FaceUp = *p.FaceUp
	}
	if p.Occupant != nil {
		o.OccupantUserId = p.Occupant.UserId
		o.OccupantName = p.Occupant.Name
	}
	return o
}

// NewSeat builds the nth seat. The millisecond suffix keeps ids unique
// within a session; two truly concurrent adds can still collide.
func NewSeat(num int) Object {
	return Object{
		Id:        fmt.Sprintf("seat-%d-%d", num, time.Now().UnixMilli()),
		Type:      ObjectSeat,
		BaseLabel: fmt.Sprintf("Jogador %d", num),
	}
}
