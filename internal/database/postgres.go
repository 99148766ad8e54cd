package database

import (
	"database/sql"
)

type PgTabletopRepository struct {
	conn *sql.DB
}

func NewPgTabletopRepository(dsn string) (*PgTabletopRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgTabletopRepository{conn: db}, nil
}

func (db *PgTabletopRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgTabletopRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
