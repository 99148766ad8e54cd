package database

import (
	"github.com/stretchr/testify/mock"
)

type MockTabletopRepository struct {
	mock.Mock
}

func (m *MockTabletopRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockTabletopRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTabletopRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTabletopRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTabletopRepository) UpdateDisplayName(accountId int, name string) (User, error) {
	args := m.Called(accountId, name)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockTabletopRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockTabletopRepository) GetRoomByExternalId(externalId string) (Room, error) {
	args := m.Called(externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockTabletopRepository) ListRooms() ([]Room, error) {
	args := m.Called()
	if rooms, ok := args.Get(0).([]Room); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockTabletopRepository) DeleteRoom(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockTabletopRepository) GetRoomState(roomExternalId string) ([]byte, error) {
	args := m.Called(roomExternalId)
	if doc, ok := args.Get(0).([]byte); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockTabletopRepository) SaveRoomState(roomExternalId string, doc []byte) error {
	args := m.Called(roomExternalId, doc)
	return args.Error(0)
}
func (m *MockTabletopRepository) DeleteRoomState(roomExternalId string) error {
	args := m.Called(roomExternalId)
	return args.Error(0)
}
