package model

import "github.com/google/uuid"

// assignID fills a zero primary key. IDs are generated in the application so
// the same models work on PostgreSQL and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
