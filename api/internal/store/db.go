package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// одна вставка на генерацию
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", SafeDSNSummary(dsn), err)
	}
	return db, nil
}

// SafeDSNSummary describes dsn for logs without the password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "dsn: parse error"
	}
	parts := []string{"host=" + u.Hostname()}
	if p := u.Port(); p != "" {
		parts = append(parts, "port="+p)
	}
	parts = append(parts, "db="+strings.TrimPrefix(u.Path, "/"), "user="+u.User.Username())
	if m := u.Query().Get("sslmode"); m != "" {
		parts = append(parts, "sslmode="+m)
	}
	return strings.Join(parts, " ")
}
