package snapstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"coursewatch-backend/lib/scrapers/banner"
	"coursewatch-backend/lib/snapstore/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// ErrNotFound means no snapshot has ever been stored for the course.
var ErrNotFound = fmt.Errorf("no snapshot stored for course")

// Store is the durable mapping from course reference number to the latest
// snapshot observed for it. The engine only ever writes here, display
// tooling reads. A put replaces the whole record in one statement so a
// reader never observes a half-written snapshot.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) Put(ctx context.Context, snapshot banner.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.qry.UpsertCourseSnapshot(ctx, db.UpsertCourseSnapshotParams{
		Crn:  snapshot.CRN,
		Data: string(data),
		Time: snapshot.Time.Unix(),
	})
}

func (s Store) Get(ctx context.Context, crn string) (banner.Snapshot, error) {
	row, err := s.qry.GetCourseSnapshot(ctx, crn)
	if err == sql.ErrNoRows {
		return banner.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return banner.Snapshot{}, err
	}

	var snapshot banner.Snapshot
	err = json.Unmarshal([]byte(row.Data), &snapshot)
	if err != nil {
		return banner.Snapshot{}, err
	}
	return snapshot, nil
}

func (s Store) List(ctx context.Context) ([]banner.Snapshot, error) {
	rows, err := s.qry.ListCourseSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	var snapshots []banner.Snapshot
	for _, row := range rows {
		var snapshot banner.Snapshot
		err = json.Unmarshal([]byte(row.Data), &snapshot)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}
