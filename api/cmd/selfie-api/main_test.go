package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// schemaDriver: Exec падает, если failExec выставлен.
type schemaDriver struct{ failExec bool }

func (d schemaDriver) Open(string) (driver.Conn, error) { return schemaConn{d}, nil }

type schemaConn struct{ d schemaDriver }

func (c schemaConn) Prepare(q string) (driver.Stmt, error) { return schemaStmt{c.d}, nil }
func (c schemaConn) Close() error                          { return nil }
func (c schemaConn) Begin() (driver.Tx, error)             { return nil, errors.New("no tx") }

type schemaStmt struct{ d schemaDriver }

func (s schemaStmt) Close() error  { return nil }
func (s schemaStmt) NumInput() int { return -1 }

func (s schemaStmt) Exec([]driver.Value) (driver.Result, error) {
	if s.d.failExec {
		return nil, errors.New("permission denied for schema public")
	}
	return driver.RowsAffected(0), nil
}

func (s schemaStmt) Query([]driver.Value) (driver.Rows, error) { return nil, errors.New("no rows") }

func init() {
	sql.Register("schema-ok", schemaDriver{})
	sql.Register("schema-fail", schemaDriver{failExec: true})
}

func TestSetupLedger(t *testing.T) {
	const dsn = "postgres://app:secret@pg:5432/selfie"

	t.Run("SchemaFailureDisablesLedger", func(t *testing.T) {
		db, err := sql.Open("schema-fail", "")
		require.NoError(t, err)
		defer db.Close()
		core, logs := observer.New(zapcore.InfoLevel)

		l := setupLedger(context.Background(), zap.New(core), db, dsn)

		assert.Nil(t, l)
		warns := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("generation ledger disabled").All()
		require.Len(t, warns, 1)
		assert.NotContains(t, warns[0].ContextMap()["dsn"], "secret")
	})

	t.Run("SchemaReadyEnablesLedger", func(t *testing.T) {
		db, err := sql.Open("schema-ok", "")
		require.NoError(t, err)
		defer db.Close()

		l := setupLedger(context.Background(), zap.NewNop(), db, dsn)
		assert.NotNil(t, l)
	})
}
