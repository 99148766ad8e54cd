package server

import (
	"net/http"
	"time"

	"github.com/ndallagnol/go-tabletop/internal/session"
	"github.com/ndallagnol/go-tabletop/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is the union of everything a client can send. Exactly
// one of the pointer fields is expected to be set.
type ClientMessage struct {
	BaseMessage
	Join        *Join        `json:"join,omitempty"`
	Leave       *Leave       `json:"leave,omitempty"`
	WatchRooms  *WatchRooms  `json:"watch_rooms,omitempty"`
	ClaimSeat   *SeatRef     `json:"claim_seat,omitempty"`
	ReleaseSeat *SeatRef     `json:"release_seat,omitempty"`
	FlipCard    *CardRef     `json:"flip_card,omitempty"`
	PointerDown *PointerDown `json:"pointer_down,omitempty"`
	PointerMove *Pointer     `json:"pointer_move,omitempty"`
	PointerUp   *PointerUp   `json:"pointer_up,omitempty"`
	AddSeat     *AddSeat     `json:"add_seat,omitempty"`
	RemoveSeat  *RemoveSeat  `json:"remove_seat,omitempty"`
	Reset       *Reset       `json:"reset,omitempty"`
	ToggleEdit  *ToggleEdit  `json:"toggle_edit,omitempty"`
}

type Join struct {
	RoomId string `json:"room_id"`
}

type Leave struct{}

type WatchRooms struct{}

type SeatRef struct {
	SeatId string `json:"seat_id"`
}

type CardRef struct {
	CardId string `json:"card_id"`
}

type PointerDown struct {
	CardId string  `json:"card_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PointerUp struct{}

type AddSeat struct{}

type RemoveSeat struct{}

type Reset struct{}

type ToggleEdit struct{}

type ServerMessage struct {
	BaseMessage
	Response *Response         `json:"response,omitempty"`
	Snapshot *session.RoomView `json:"snapshot,omitempty"`
	RoomList *RoomList         `json:"room_list,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

type RoomList struct {
	Rooms []types.Room `json:"rooms"`
}

func NoErrOK(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
		},
	}
}

func ErrNotAllowed(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "operation not allowed",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
