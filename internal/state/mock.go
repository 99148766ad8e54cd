package state

import (
	"github.com/stretchr/testify/mock"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) State(roomId string) (RoomState, error) {
	args := m.Called(roomId)
	return args.Get(0).(RoomState), args.Error(1)
}
func (m *MockChannel) SetState(roomId string, st RoomState) error {
	args := m.Called(roomId, st)
	return args.Error(0)
}
func (m *MockChannel) UpdateState(roomId string, u Update) error {
	args := m.Called(roomId, u)
	return args.Error(0)
}
func (m *MockChannel) DeleteState(roomId string) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockChannel) Subscribe(roomId string) *Subscription {
	args := m.Called(roomId)
	return args.Get(0).(*Subscription)
}
func (m *MockChannel) SubscribeRooms() *RoomsSubscription {
	args := m.Called()
	return args.Get(0).(*RoomsSubscription)
}
func (m *MockChannel) NotifyRoomsChanged() {
	m.Called()
}
