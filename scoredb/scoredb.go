/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package scoredb exports selection score tables to a MySQL database.
package scoredb

import (
	"context"
	"database/sql"
	"math"
	"time"

	_ "github.com/go-sql-driver/mysql" // register the mysql driver
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

const (
	sqlDriverName   = "mysql"
	connMaxLifetime = time.Minute * 3
	maxOpenConns    = 10
	maxIdleConns    = 10
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrNotScored = Error("table has no score column")

// DB is a connection to a database holding exported scores.
type DB struct {
	pool *sql.DB
}

// New returns a new DB connection using a data source name that you can get
// from config.FromEnv().FormatDSN().
func New(dsn string) (*DB, error) {
	pool, err := sql.Open(sqlDriverName, dsn)
	if err != nil {
		return nil, err
	}

	pool.SetConnMaxLifetime(connMaxLifetime)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)

	return &DB{pool: pool}, pool.Ping()
}

// Score is the exported form of one row of a score table. Values that were
// NaN in the table are invalid.
type Score struct {
	Selection  string
	Kind       string
	Entity     string
	Rank       int
	InputCount sql.NullInt64
	Score      sql.NullFloat64
	RSquared   sql.NullFloat64
}

const createScores = `
CREATE TABLE IF NOT EXISTS enrich_scores (
	selection VARCHAR(255) NOT NULL,
	kind VARCHAR(64) NOT NULL,
	entity VARCHAR(1024) NOT NULL,
	rank_order INT NOT NULL,
	input_count BIGINT NULL,
	score DOUBLE NULL,
	r_sq DOUBLE NULL,
	PRIMARY KEY (selection, kind, rank_order)
)
`

const deleteScores = `DELETE FROM enrich_scores WHERE selection = ? AND kind = ?`

const insertScore = `
INSERT INTO enrich_scores (selection, kind, entity, rank_order, input_count, score, r_sq)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const getScores = `
SELECT selection, kind, entity, rank_order, input_count, score, r_sq
FROM enrich_scores
WHERE selection = ? AND kind = ?
ORDER BY rank_order
`

// CreateSchema creates the scores table if it doesn't already exist.
func (d *DB) CreateSchema(ctx context.Context) error {
	_, err := d.pool.ExecContext(ctx, createScores)

	return err
}

// ScoresFromTable converts a score table, in its current row order, to
// Scores for the given selection. The table's name is used as the kind.
func ScoresFromTable(selection string, t *table.Table) ([]Score, error) {
	scores := t.Floats(table.ColScore)
	if scores == nil {
		return nil, ErrNotScored
	}

	rsq := t.Floats(table.ColRSquared)
	input := t.Floats(table.CountCol(types.ReferenceTimepoint))
	rows := make([]Score, t.Len())

	for i, id := range t.Index() {
		rows[i] = Score{
			Selection: selection,
			Kind:      t.Name(),
			Entity:    id,
			Rank:      i,
			Score:     nullFloat(scores, i),
			RSquared:  nullFloat(rsq, i),
		}

		if f := nullFloat(input, i); f.Valid {
			rows[i].InputCount = sql.NullInt64{Int64: int64(f.Float64), Valid: true}
		}
	}

	return rows, nil
}

func nullFloat(vals []float64, i int) sql.NullFloat64 {
	if vals == nil || math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: vals[i], Valid: true}
}

// Export replaces any previously exported scores for the selection and
// table kind with the table's current rows, in a single transaction. It
// returns the number of rows exported.
func (d *DB) Export(ctx context.Context, selection string, t *table.Table) (n int, err error) {
	rows, err := ScoresFromTable(selection, t)
	if err != nil {
		return 0, err
	}

	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err != nil {
			tx.Rollback() //nolint:errcheck
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteScores, selection, t.Name()); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, insertScore)
	if err != nil {
		return 0, err
	}

	defer stmt.Close()

	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx, r.Selection, r.Kind, r.Entity, r.Rank,
			r.InputCount, r.Score, r.RSquared); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return len(rows), nil
}

// Scores returns the exported scores for the selection and table kind, in
// rank order.
func (d *DB) Scores(ctx context.Context, selection, kind string) ([]Score, error) {
	rows, err := d.pool.QueryContext(ctx, getScores, selection, kind)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var scores []Score

	for rows.Next() {
		var s Score

		if err := rows.Scan(
			&s.Selection,
			&s.Kind,
			&s.Entity,
			&s.Rank,
			&s.InputCount,
			&s.Score,
			&s.RSquared,
		); err != nil {
			return nil, err
		}

		scores = append(scores, s)
	}

	if err := rows.Close(); err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}

// Delete removes the exported scores for the selection and table kind.
func (d *DB) Delete(ctx context.Context, selection, kind string) error {
	_, err := d.pool.ExecContext(ctx, deleteScores, selection, kind)

	return err
}

// Close closes the connection to the database.
func (d *DB) Close() error {
	return d.pool.Close()
}
