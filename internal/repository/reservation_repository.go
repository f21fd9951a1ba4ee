package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/bowling-lane-reservation/internal/booking"
    "github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// reservationIDCounter is the row in `counters` that hands out
// reservation identifiers.
const reservationIDCounter = "reservation_id"

// ReservationRepo is the MySQL implementation of booking.Store.  Dates and
// clock times are stored as the same strings the API accepts
// (YYYY-MM-DD and HH:MM) so that no timezone conversion ever happens
// between the request and the row.  created_at is a UTC DATETIME.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, name, phone, reservation_date, start_time, end_time, duration_hours,
                      lane, players, notes, total_cost, customer_email, created_at`

// WithLane opens a transaction and takes a row lock on lane_locks for the
// (date, lane) pair before running fn.  The row is created on first use;
// every later admission for the same pair blocks on SELECT ... FOR UPDATE
// until the holder commits or rolls back.  fn's error rolls the
// transaction back and is returned unchanged.
func (r *ReservationRepo) WithLane(ctx context.Context, date, lane string, fn func(tx booking.LaneTx) error) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin lane tx: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    // create the lock row if this is the first booking for the pair
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO lane_locks (lane_date, lane) VALUES (?, ?) ON DUPLICATE KEY UPDATE lane = lane`,
        date, lane); err != nil {
        return fmt.Errorf("upsert lane lock: %w", err)
    }
    var locked string
    if err := tx.QueryRowContext(ctx,
        `SELECT lane FROM lane_locks WHERE lane_date = ? AND lane = ? FOR UPDATE`,
        date, lane).Scan(&locked); err != nil {
        return fmt.Errorf("lock lane: %w", err)
    }
    if err := fn(&sqlLaneTx{tx: tx, date: date, lane: lane}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit lane tx: %w", err)
    }
    committed = true
    return nil
}

// Get loads one reservation or returns booking.ErrNotFound.
func (r *ReservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
    res, err := scanReservation(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, booking.ErrNotFound
        }
        return nil, err
    }
    return &res, nil
}

// List returns reservations matching the filter.  Ordering is left to the
// caller.
func (r *ReservationRepo) List(ctx context.Context, f booking.Filter) ([]model.Reservation, error) {
    var (
        where []string
        args  []interface{}
    )
    if f.Date != "" {
        where = append(where, "reservation_date = ?")
        args = append(args, f.Date)
    }
    if f.CustomerEmail != "" {
        where = append(where, "customer_email = ?")
        args = append(args, f.CustomerEmail)
    }
    q := `SELECT ` + reservationColumns + ` FROM reservations`
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    return queryReservations(ctx, r.db, q, args...)
}

// ListLane returns every reservation on (date, lane) without locking.
func (r *ReservationRepo) ListLane(ctx context.Context, date, lane string) ([]model.Reservation, error) {
    return queryReservations(ctx, r.db,
        `SELECT `+reservationColumns+` FROM reservations WHERE reservation_date = ? AND lane = ?`,
        date, lane)
}

// Delete removes a reservation or returns booking.ErrNotFound.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return booking.ErrNotFound
    }
    return nil
}

// Count returns the number of reservations.
func (r *ReservationRepo) Count(ctx context.Context) (int, error) {
    var n int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func queryReservations(ctx context.Context, q queryer, query string, args ...interface{}) ([]model.Reservation, error) {
    rows, err := q.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Reservation{}
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, rows.Err()
}

type scanner interface {
    Scan(dest ...interface{}) error
}

func scanReservation(s scanner) (model.Reservation, error) {
    var res model.Reservation
    err := s.Scan(&res.ID, &res.Name, &res.Phone, &res.Date, &res.StartTime, &res.EndTime,
        &res.DurationHours, &res.Lane, &res.Players, &res.Notes, &res.TotalCost,
        &res.CustomerEmail, &res.CreatedAt)
    return res, err
}

// sqlLaneTx is the LaneTx handed to WithLane callbacks.
type sqlLaneTx struct {
    tx         *sql.Tx
    date, lane string
}

func (t *sqlLaneTx) Reservations(ctx context.Context) ([]model.Reservation, error) {
    return queryReservations(ctx, t.tx,
        `SELECT `+reservationColumns+` FROM reservations WHERE reservation_date = ? AND lane = ?`,
        t.date, t.lane)
}

// NextID bumps the reservation counter inside the lane transaction so an
// admission never needs a second pooled connection.  The counter row stays
// locked until commit, which is always the next statement after Insert.
// A rolled back admission rolls the counter back with it.
func (t *sqlLaneTx) NextID(ctx context.Context) (uint64, error) {
    res, err := t.tx.ExecContext(ctx,
        `INSERT INTO counters (name, value) VALUES (?, LAST_INSERT_ID(1))
         ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`,
        reservationIDCounter)
    if err != nil {
        return 0, fmt.Errorf("next reservation id: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, fmt.Errorf("next reservation id: %w", err)
    }
    return uint64(id), nil
}

func (t *sqlLaneTx) Insert(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (id, name, phone, reservation_date, start_time, end_time,
                      duration_hours, lane, players, notes, total_cost, customer_email, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := t.tx.ExecContext(ctx, q, res.ID, res.Name, res.Phone, res.Date, res.StartTime, res.EndTime,
        res.DurationHours, res.Lane, res.Players, res.Notes, res.TotalCost, res.CustomerEmail, res.CreatedAt)
    if err != nil {
        return fmt.Errorf("insert reservation: %w", err)
    }
    return nil
}
