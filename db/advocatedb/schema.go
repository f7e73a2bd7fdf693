package advocatedb

import (
	"context"
	"database/sql"
)

// The FTS table uses the advocates table as external content and is kept in
// sync by triggers, so only the advocates table is ever written to.
const ddl = `
CREATE TABLE IF NOT EXISTS advocates (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name          TEXT NOT NULL,
    last_name           TEXT NOT NULL,
    city                TEXT NOT NULL,
    degree              TEXT NOT NULL,
    specialties         TEXT NOT NULL DEFAULT '[]',
    years_of_experience INTEGER NOT NULL DEFAULT 0 CHECK (years_of_experience >= 0),
    phone_number        INTEGER NOT NULL,
    created_at          TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS advocates_fts USING fts5(
    first_name,
    last_name,
    city,
    degree,
    specialties,
    content='advocates',
    content_rowid='id',
    tokenize='unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS advocates_fts_insert AFTER INSERT ON advocates BEGIN
    INSERT INTO advocates_fts(rowid, first_name, last_name, city, degree, specialties)
    VALUES (new.id, new.first_name, new.last_name, new.city, new.degree, new.specialties);
END;

CREATE TRIGGER IF NOT EXISTS advocates_fts_delete AFTER DELETE ON advocates BEGIN
    INSERT INTO advocates_fts(advocates_fts, rowid, first_name, last_name, city, degree, specialties)
    VALUES ('delete', old.id, old.first_name, old.last_name, old.city, old.degree, old.specialties);
END;

CREATE TRIGGER IF NOT EXISTS advocates_fts_update AFTER UPDATE ON advocates BEGIN
    INSERT INTO advocates_fts(advocates_fts, rowid, first_name, last_name, city, degree, specialties)
    VALUES ('delete', old.id, old.first_name, old.last_name, old.city, old.degree, old.specialties);
    INSERT INTO advocates_fts(rowid, first_name, last_name, city, degree, specialties)
    VALUES (new.id, new.first_name, new.last_name, new.city, new.degree, new.specialties);
END;
`

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, ddl)
	return err
}
