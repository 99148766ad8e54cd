package database

type TabletopRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	UpdateDisplayName(accountId int, name string) (User, error)
	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomByExternalId(externalId string) (Room, error)
	ListRooms() ([]Room, error)
	DeleteRoom(id int) error
	GetRoomState(roomExternalId string) ([]byte, error)
	SaveRoomState(roomExternalId string, doc []byte) error
	DeleteRoomState(roomExternalId string) error
}
