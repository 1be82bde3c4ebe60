package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// recDriver: database/sql драйвер, который только запоминает запросы.
type recDriver struct {
	mu    sync.Mutex
	execs []recExec
}

type recExec struct {
	query string
	args  []driver.Value
}

func (d *recDriver) Open(string) (driver.Conn, error) { return &recConn{d: d}, nil }

type recConn struct{ d *recDriver }

func (c *recConn) Prepare(query string) (driver.Stmt, error) { return &recStmt{d: c.d, q: query}, nil }
func (c *recConn) Close() error                              { return nil }
func (c *recConn) Begin() (driver.Tx, error)                 { return nil, errors.New("no tx") }

type recStmt struct {
	d *recDriver
	q string
}

func (s *recStmt) Close() error  { return nil }
func (s *recStmt) NumInput() int { return -1 }

func (s *recStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.d.mu.Lock()
	s.d.execs = append(s.d.execs, recExec{query: s.q, args: args})
	s.d.mu.Unlock()
	return driver.RowsAffected(1), nil
}

func (s *recStmt) Query(args []driver.Value) (driver.Rows, error) { return nil, errors.New("no rows") }

var (
	registerOnce sync.Once
	fakeDriver   = &recDriver{}
)

func openFake() *sql.DB {
	registerOnce.Do(func() { sql.Register("recdb", fakeDriver) })
	db, _ := sql.Open("recdb", "")
	return db
}
