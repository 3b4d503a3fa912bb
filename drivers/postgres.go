package drivers

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
)

func postgresFamily() Family {
	return Family{
		ID:       DriverPostgreSQL,
		Prefixes: []string{"jdbc:postgresql:"},
		Open:     openPostgres,
	}
}

// openPostgres connects through pgx. Server notices (RAISE NOTICE and
// friends) feed the warning sink in arrival order.
func openPostgres(t Target, warn WarningSink) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(strings.TrimPrefix(t.URL, "jdbc:"))
	if err != nil {
		return nil, fmt.Errorf("parse postgresql url: %w", err)
	}

	if t.HasCredentials() {
		cfg.User = t.Username
		cfg.Password = string(t.Password)
	}

	if warn != nil {
		cfg.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
			warn(n.Message)
		}
	}

	return stdlib.OpenDB(*cfg), nil
}
