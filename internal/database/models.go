package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	Anonymous    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Room struct {
	Id         int
	ExternalId string
	Name       string
	OwnerId    int
	OwnerName  string
	CreatedAt  time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
	Anonymous    bool
}

type CreateRoomParams struct {
	Name       string
	ExternalId string
	OwnerId    int
	OwnerName  string
}
