package drivers

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func mysqlFamily() Family {
	return Family{
		ID:       DriverMySQL,
		Prefixes: []string{"jdbc:mysql:"},
		Activate: activateMySQL,
		Open:     openMySQL,
	}
}

// activateMySQL silences the driver's package-level logger, which
// otherwise prints connection noise to stderr.
func activateMySQL(quiet bool) error {
	if !quiet {
		return nil
	}
	return mysql.SetLogger(discardLogger{})
}

type discardLogger struct{}

func (discardLogger) Print(...any) {}

func openMySQL(t Target, _ WarningSink) (*sql.DB, error) {
	dsn, err := mysqlDSN(t)
	if err != nil {
		return nil, err
	}
	return sql.Open("mysql", dsn)
}

// mysqlDSN rebuilds a jdbc:mysql://host:port/db?params URL into the
// driver's user:pass@tcp(host:port)/db form.
func mysqlDSN(t Target) (string, error) {
	u, err := url.Parse(strings.TrimPrefix(t.URL, "jdbc:"))
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	if t.HasCredentials() {
		cfg.User = t.Username
		cfg.Passwd = string(t.Password)
	} else if u.User != nil {
		cfg.User = u.User.Username()
		if p, ok := u.User.Password(); ok {
			cfg.Passwd = p
		}
	}

	for k, vs := range u.Query() {
		if len(vs) == 0 {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[k] = vs[0]
	}

	return cfg.FormatDSN(), nil
}
