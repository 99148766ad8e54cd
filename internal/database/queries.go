package database

import (
	"time"
)

func (db *PgTabletopRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, anonymous, created_at, updated_at) "+
			"VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $5) "+
			"RETURNING id, username, COALESCE(email, ''), anonymous, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		params.Anonymous,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.Anonymous,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTabletopRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, COALESCE(email, ''), COALESCE(password_hash, ''), anonymous, created_at, updated_at "+
			"FROM accounts WHERE id = $1 LIMIT 1",
		accountId,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.Anonymous,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTabletopRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, COALESCE(email, ''), COALESCE(password_hash, ''), anonymous, created_at, updated_at "+
			"FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.Anonymous,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTabletopRepository) UpdateDisplayName(accountId int, name string) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET username = $2, updated_at = $3 WHERE id = $1 "+
			"RETURNING id, username, COALESCE(email, ''), anonymous, created_at, updated_at",
		accountId,
		name,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.Anonymous,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTabletopRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	res := db.conn.QueryRow(
		"INSERT INTO rooms (external_id, name, owner_id, owner_name, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) "+
			"RETURNING id, external_id, name, owner_id, owner_name, created_at",
		params.ExternalId,
		params.Name,
		params.OwnerId,
		params.OwnerName,
		time.Now().UTC(),
	)

	var room Room
	err := res.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.OwnerId,
		&room.OwnerName,
		&room.CreatedAt,
	)

	return room, err
}

func (db *PgTabletopRepository) GetRoomByExternalId(externalId string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, name, owner_id, owner_name, created_at FROM rooms "+
			"WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var room Room
	err := row.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.OwnerId,
		&room.OwnerName,
		&room.CreatedAt,
	)

	return room, err
}

// ListRooms returns every room; callers filter by owner themselves.
func (db *PgTabletopRepository) ListRooms() ([]Room, error) {
	rows, err := db.conn.Query(
		"SELECT id, external_id, name, owner_id, owner_name, created_at FROM rooms ORDER BY created_at",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var room Room
		if err = rows.Scan(&room.Id, &room.ExternalId, &room.Name, &room.OwnerId, &room.OwnerName, &room.CreatedAt); err != nil {
			break
		}

		rooms = append(rooms, room)
	}
	return rooms, err
}

func (db *PgTabletopRepository) DeleteRoom(id int) error {
	_, err := db.conn.Exec("DELETE FROM rooms WHERE id = $1", id)
	return err
}

func (db *PgTabletopRepository) GetRoomState(roomExternalId string) ([]byte, error) {
	row := db.conn.QueryRow(
		"SELECT doc FROM room_states WHERE room_external_id = $1 LIMIT 1",
		roomExternalId,
	)

	var doc []byte
	err := row.Scan(&doc)

	return doc, err
}

func (db *PgTabletopRepository) SaveRoomState(roomExternalId string, doc []byte) error {
	_, err := db.conn.Exec(
		"INSERT INTO room_states (room_external_id, doc, updated_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (room_external_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at",
		roomExternalId,
		doc,
		time.Now().UTC(),
	)

	return err
}

func (db *PgTabletopRepository) DeleteRoomState(roomExternalId string) error {
	_, err := db.conn.Exec(
		"DELETE FROM room_states WHERE room_external_id = $1",
		roomExternalId,
	)

	return err
}
