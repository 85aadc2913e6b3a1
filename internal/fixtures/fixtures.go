// Package fixtures is a sqlite3-backed bank of named synthetic capture
// scenarios for deterministic end-to-end tests, grounded on the
// teacher's SqliteReader (readers.go): open a sqlite file with
// database/sql, SELECT its rows, Scan each into a Go struct. Packets are
// produced in internal/capture.FileSource's own record format so a
// scenario loaded from the bank can drive a real FileSource/Controller
// pipeline without a file on disk ever having been hand-written.
package fixtures

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"
)

// Packet is one synthetic captured packet belonging to a named scenario.
type Packet struct {
	Second  int64
	Payload []byte
}

// Bank opens a sqlite file holding a `packets(scenario TEXT, second
// INTEGER, payload BLOB)` table, one row per packet, grounded on
// readers.go's SqliteReader/ReadSqlite (`sql.Open("sqlite3", ...)`, a
// `SELECT`, `rows.Next`/`rows.Scan`).
type Bank struct {
	db *sql.DB
}

// OpenBank opens the sqlite file at path.
func OpenBank(path string) (*Bank, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: opening %s: %w", path, err)
	}
	return &Bank{db: db}, nil
}

// Close releases the underlying sqlite connection.
func (b *Bank) Close() error { return b.db.Close() }

// Names lists every distinct scenario recorded in the bank.
func (b *Bank) Names() ([]string, error) {
	rows, err := b.db.Query(`SELECT DISTINCT scenario FROM packets ORDER BY scenario ASC`)
	if err != nil {
		return nil, fmt.Errorf("fixtures: listing scenarios: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("fixtures: scanning scenario name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Scenario returns every packet recorded for name, ordered by second so
// the result can be handed straight to WriteRecords.
func (b *Bank) Scenario(name string) ([]Packet, error) {
	rows, err := b.db.Query(`SELECT second, payload FROM packets WHERE scenario = ? ORDER BY second ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("fixtures: querying scenario %q: %w", name, err)
	}
	defer rows.Close()

	var packets []Packet
	for rows.Next() {
		var p Packet
		if err := rows.Scan(&p.Second, &p.Payload); err != nil {
			return nil, fmt.Errorf("fixtures: scanning scenario %q: %w", name, err)
		}
		packets = append(packets, p)
	}
	return packets, rows.Err()
}

// Seed creates the packets table (if absent) and inserts scenarios into
// db. It exists so tests can build a Bank in-process against a temporary
// sqlite file instead of checking in a binary fixture.
func Seed(db *sql.DB, scenarios map[string][]Packet) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS packets (
		scenario TEXT NOT NULL,
		second   INTEGER NOT NULL,
		payload  BLOB NOT NULL
	)`); err != nil {
		return fmt.Errorf("fixtures: creating packets table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO packets (scenario, second, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("fixtures: preparing insert: %w", err)
	}
	defer stmt.Close()

	for name, packets := range scenarios {
		for _, p := range packets {
			if _, err := stmt.Exec(name, p.Second, p.Payload); err != nil {
				return fmt.Errorf("fixtures: inserting scenario %q: %w", name, err)
			}
		}
	}
	return nil
}

// recordHeaderLen mirrors internal/capture.FileSource's own constant;
// duplicated rather than imported so internal/fixtures (a test-support
// package) does not depend on internal/capture.
const recordHeaderLen = 8

// WriteRecords encodes packets in internal/capture.FileSource's record
// format: `(unix_seconds uint32, payload_len uint32, payload []byte)`,
// all big-endian, one record per packet in slice order.
func WriteRecords(w io.Writer, packets []Packet) error {
	header := make([]byte, recordHeaderLen)
	for _, p := range packets {
		binary.BigEndian.PutUint32(header[0:4], uint32(p.Second))
		binary.BigEndian.PutUint32(header[4:8], uint32(len(p.Payload)))
		if _, err := w.Write(header); err != nil {
			return err
		}
		if _, err := w.Write(p.Payload); err != nil {
			return err
		}
	}
	return nil
}
