package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/lib/pq"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	testNow         = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	eventRowColumns = []string{"id", "name", "active", "created_at"}
	resultRowCols   = []string{"id", "event_id", "runner_name", "house", "time", "created_at"}
)

func setupMockStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := NewPostgresStore(db,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "11111111-1111-1111-1111-111111111111" }),
	)
	return db, mock, store
}

func TestPostgresStore_Migrate(t *testing.T) {
	Convey("Given a postgres store", t, func() {
		db, mock, store := setupMockStore(t)
		defer db.Close()

		Convey("When the schema is applied", func() {
			mock.ExpectExec(`CREATE TABLE IF NOT EXISTS events`).WillReturnResult(sqlmock.NewResult(0, 0))
			err := store.Migrate(context.Background())

			Convey("Then the embedded schema is executed", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the schema fails", func() {
			mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))
			err := store.Migrate(context.Background())

			Convey("Then the error is surfaced", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "apply schema")
			})
		})
	})
}

func TestPostgresStore_Events(t *testing.T) {
	ctx := context.Background()

	Convey("Given a postgres store", t, func() {
		db, mock, store := setupMockStore(t)
		defer db.Close()

		Convey("When inserting an active event", func() {
			mock.ExpectExec(`INSERT INTO events`).
				WithArgs("11111111-1111-1111-1111-111111111111", "Girls 14 Years 3km", true, testNow).
				WillReturnResult(sqlmock.NewResult(0, 1))

			ev, err := store.InsertEvent(ctx, model.Event{Name: "Girls 14 Years 3km", Active: true})

			Convey("Then the ID and creation time are assigned", func() {
				So(err, ShouldBeNil)
				So(ev.ID, ShouldEqual, "11111111-1111-1111-1111-111111111111")
				So(ev.CreatedAt, ShouldEqual, testNow)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the single-active index rejects the insert", func() {
			mock.ExpectExec(`INSERT INTO events`).
				WillReturnError(&pq.Error{Code: pgUniqueViolation, Message: "duplicate key value violates unique constraint \"events_single_active\""})

			_, err := store.InsertEvent(ctx, model.Event{Name: "Boys Open 5km", Active: true})

			Convey("Then ErrConflict is returned", func() {
				So(errors.Is(err, ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When there is no active event", func() {
			mock.ExpectQuery(`SELECT id, name, active, created_at FROM events WHERE active`).
				WillReturnRows(sqlmock.NewRows(eventRowColumns))

			_, err := store.ActiveEvent(ctx)

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing events", func() {
			mock.ExpectQuery(`ORDER BY created_at DESC`).
				WillReturnRows(sqlmock.NewRows(eventRowColumns).
					AddRow("b", "Boys Open 5km", true, testNow).
					AddRow("a", "Girls 14 Years 3km", false, testNow.Add(-time.Hour)))

			events, err := store.ListEvents(ctx)

			Convey("Then rows are returned in query order", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
				So(events[0].ID, ShouldEqual, "b")
				So(events[0].Active, ShouldBeTrue)
				So(events[1].Name, ShouldEqual, "Girls 14 Years 3km")
			})
		})

		Convey("When deactivating every event", func() {
			mock.ExpectQuery(`UPDATE events SET active = FALSE WHERE active RETURNING id`).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a"))

			ids, err := store.DeactivateAll(ctx)

			Convey("Then the changed IDs are reported", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"a"})
			})
		})

		Convey("When ending an unknown event", func() {
			mock.ExpectExec(`UPDATE events SET active = FALSE WHERE id`).
				WithArgs("missing").
				WillReturnResult(sqlmock.NewResult(0, 0))

			err := store.DeactivateEvent(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When looking up a malformed id", func() {
			mock.ExpectQuery(`WHERE id = \$1`).
				WithArgs("not-a-uuid").
				WillReturnError(&pq.Error{Code: pgInvalidText})

			_, err := store.GetEvent(ctx, "not-a-uuid")

			Convey("Then it reads as not found", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestPostgresStore_Results(t *testing.T) {
	ctx := context.Background()

	Convey("Given a postgres store", t, func() {
		db, mock, store := setupMockStore(t)
		defer db.Close()

		Convey("When inserting a result for an unknown event", func() {
			mock.ExpectExec(`INSERT INTO results`).
				WillReturnError(&pq.Error{Code: pgForeignKeyViolation})

			_, err := store.InsertResult(ctx, model.Result{EventID: "gone", RunnerName: "Ann", House: "Hay", Time: "05:00.00"})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When inserting a valid result", func() {
			mock.ExpectExec(`INSERT INTO results`).
				WithArgs("11111111-1111-1111-1111-111111111111", "ev", "Ann", "Hay", "05:03.07", testNow).
				WillReturnResult(sqlmock.NewResult(0, 1))

			r, err := store.InsertResult(ctx, model.Result{EventID: "ev", RunnerName: "Ann", House: "Hay", Time: "05:03.07"})

			Convey("Then the stored row is returned", func() {
				So(err, ShouldBeNil)
				So(r.ID, ShouldNotBeEmpty)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When listing results", func() {
			mock.ExpectQuery(`FROM results WHERE event_id = \$1 ORDER BY seq`).
				WithArgs("ev").
				WillReturnRows(sqlmock.NewRows(resultRowCols).
					AddRow("r1", "ev", "Ann", "Hay", "05:03.07", testNow).
					AddRow("r2", "ev", "Bea", "Jones", "04:59.99", testNow))

			results, err := store.ListResults(ctx, "ev")

			Convey("Then insertion order is kept", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				So(results[0].ID, ShouldEqual, "r1")
				So(results[1].House, ShouldEqual, model.House("Jones"))
			})
		})

		Convey("When deleting a result that exists", func() {
			mock.ExpectQuery(`DELETE FROM results WHERE id = \$1 RETURNING`).
				WithArgs("r1").
				WillReturnRows(sqlmock.NewRows(resultRowCols).AddRow("r1", "ev", "Ann", "Hay", "05:03.07", testNow))

			r, ok, err := store.DeleteResult(ctx, "r1")

			Convey("Then the removed row is returned", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(r.EventID, ShouldEqual, "ev")
			})
		})

		Convey("When deleting a result that is already gone", func() {
			mock.ExpectQuery(`DELETE FROM results`).
				WithArgs("r1").
				WillReturnRows(sqlmock.NewRows(resultRowCols))

			_, ok, err := store.DeleteResult(ctx, "r1")

			Convey("Then it is a no-op", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the database fails", func() {
			mock.ExpectQuery(`FROM results`).WillReturnError(errors.New("connection reset"))

			_, err := store.ListResults(ctx, "ev")

			Convey("Then the error is surfaced unchanged in kind", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrNotFound), ShouldBeFalse)
			})
		})
	})
}
