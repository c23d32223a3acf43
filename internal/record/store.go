// Package record persists pose samples to a SQLite database.
package record

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gnss-base/internal/pose"
)

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS poses (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER,
    x         REAL,
    y         REAL,
    z         REAL,
    var_x     REAL,
    var_y     REAL,
    var_z     REAL
);
CREATE INDEX IF NOT EXISTS idx_poses_timestamp ON poses (timestamp);`

	insertPoseSQL = `
INSERT INTO poses (timestamp,
                   x,
                   y,
                   z,
                   var_x,
                   var_y,
                   var_z)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectPosesSQL = `
SELECT 
    timestamp, 
    x, 
    y, 
    z, 
    var_x, 
    var_y, 
    var_z 
FROM poses 
ORDER BY id`
)

// SqliteStore writes pose samples to a SQLite file. Unknown (NaN) values are
// stored as NULL and samples without a timestamp get a NULL timestamp.
type SqliteStore struct {
	dbPath string

	dbOnce sync.Once
	db     *sql.DB
	dbErr  error

	insert *sql.Stmt
}

func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getDB(ctx context.Context) (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.dbErr = fmt.Errorf("opening database: %w", err)
			return
		}
		if _, err = db.ExecContext(ctx, initSchemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = fmt.Errorf("initializing schema: %w", err)
			return
		}
		stmt, err := db.PrepareContext(ctx, insertPoseSQL)
		if err != nil {
			_ = db.Close()
			s.dbErr = fmt.Errorf("preparing statement: %w", err)
			return
		}
		s.db = db
		s.insert = stmt
	})
	return s.db, s.dbErr
}

// Emit appends one sample.
func (s *SqliteStore) Emit(ctx context.Context, p pose.Sample) error {
	if _, err := s.getDB(ctx); err != nil {
		return err
	}
	if s.insert == nil {
		return fmt.Errorf("pose store is closed")
	}
	cov := p.PositionCov.Diagonal()
	_, err := s.insert.ExecContext(ctx,
		nullTime(p.Time),
		nullFloat(p.Position.X),
		nullFloat(p.Position.Y),
		nullFloat(p.Position.Z),
		nullFloat(cov.X),
		nullFloat(cov.Y),
		nullFloat(cov.Z),
	)
	if err != nil {
		return fmt.Errorf("inserting pose: %w", err)
	}
	return nil
}

// Samples returns every stored sample in insertion order.
func (s *SqliteStore) Samples(ctx context.Context) (out []pose.Sample, err error) {
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("pose store is closed")
	}
	rows, err := db.QueryContext(ctx, selectPosesSQL)
	if err != nil {
		return nil, fmt.Errorf("querying poses: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		var (
			ts                        sql.NullInt64
			x, y, z, varX, varY, varZ sql.NullFloat64
		)
		if err = rows.Scan(&ts, &x, &y, &z, &varX, &varY, &varZ); err != nil {
			return nil, fmt.Errorf("scanning pose: %w", err)
		}
		var p pose.Sample
		if ts.Valid {
			p.Time = time.Unix(0, ts.Int64).UTC()
		}
		p.Position = pose.Vec3{X: floatOrNaN(x), Y: floatOrNaN(y), Z: floatOrNaN(z)}
		p.PositionCov[0][0] = floatOrNaN(varX)
		p.PositionCov[1][1] = floatOrNaN(varY)
		p.PositionCov[2][2] = floatOrNaN(varZ)
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SqliteStore) Close() error {
	if s.insert != nil {
		_ = s.insert.Close()
		s.insert = nil
	}
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
