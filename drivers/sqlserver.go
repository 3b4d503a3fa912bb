package drivers

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
)

func sqlserverFamily() Family {
	return Family{
		ID:       DriverSQLServer,
		Prefixes: []string{"jdbc:sqlserver:"},
		Open: func(t Target, _ WarningSink) (*sql.DB, error) {
			u, err := sqlserverURL(t)
			if err != nil {
				return nil, err
			}
			return sql.Open("sqlserver", u)
		},
	}
}

// jtdsFamily covers the legacy TDS URL form. go-mssqldb registers the
// compatibility "mssql" driver name alongside "sqlserver"; the legacy
// name keeps its older query parameter semantics.
func jtdsFamily() Family {
	return Family{
		ID:       DriverJTDS,
		Prefixes: []string{"jdbc:jtds:"},
		Open: func(t Target, _ WarningSink) (*sql.DB, error) {
			u, err := jtdsURL(t)
			if err != nil {
				return nil, err
			}
			return sql.Open("mssql", u)
		},
	}
}

// sqlserverURL rebuilds jdbc:sqlserver://host:port;databaseName=db;k=v
// into the driver's sqlserver://host:port?database=db&k=v form.
func sqlserverURL(t Target) (string, error) {
	raw := strings.TrimPrefix(t.URL, "jdbc:sqlserver:")
	raw = strings.TrimPrefix(raw, "//")

	parts := strings.Split(raw, ";")
	host := parts[0]
	if host == "" {
		return "", fmt.Errorf("parse sqlserver url: missing host in %q", t.URL)
	}

	q := url.Values{}
	instance := ""
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return "", fmt.Errorf("parse sqlserver url: malformed property %q", p)
		}
		switch k {
		case "databaseName", "database":
			q.Set("database", v)
		case "instanceName":
			instance = v
		default:
			q.Set(k, v)
		}
	}

	u := url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: q.Encode(),
	}
	if instance != "" {
		u.Path = instance
	}
	if t.HasCredentials() {
		u.User = url.UserPassword(t.Username, string(t.Password))
	}
	return u.String(), nil
}

// jtdsURL rebuilds jdbc:jtds:sqlserver://host:port/db;k=v into the
// same URL form, addressed at the legacy driver name.
func jtdsURL(t Target) (string, error) {
	raw := strings.TrimPrefix(t.URL, "jdbc:jtds:")
	raw = strings.TrimPrefix(raw, "sqlserver:")
	raw = strings.TrimPrefix(raw, "//")

	parts := strings.Split(raw, ";")
	hostAndDB := parts[0]
	if hostAndDB == "" {
		return "", fmt.Errorf("parse jtds url: missing host in %q", t.URL)
	}

	host, db, _ := strings.Cut(hostAndDB, "/")

	q := url.Values{}
	if db != "" {
		q.Set("database", db)
	}
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return "", fmt.Errorf("parse jtds url: malformed property %q", p)
		}
		q.Set(k, v)
	}

	u := url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		RawQuery: q.Encode(),
	}
	if t.HasCredentials() {
		u.User = url.UserPassword(t.Username, string(t.Password))
	}
	return u.String(), nil
}
