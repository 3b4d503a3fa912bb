package drivers

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"
)

const oracleDefaultPort = 1521

func oracleFamily() Family {
	return Family{
		ID:       DriverOracle,
		Prefixes: []string{"jdbc:oracle:thin:"},
		Open: func(t Target, _ WarningSink) (*sql.DB, error) {
			dsn, err := oracleURL(t)
			if err != nil {
				return nil, err
			}
			return sql.Open("oracle", dsn)
		},
	}
}

// oracleURL rebuilds a thin URL (jdbc:oracle:thin:@//host:port/service
// or the legacy jdbc:oracle:thin:@host:port:sid) into go-ora's form.
func oracleURL(t Target) (string, error) {
	raw := strings.TrimPrefix(t.URL, "jdbc:oracle:thin:")
	raw = strings.TrimPrefix(raw, "@")

	var host, service string
	port := oracleDefaultPort

	if rest, ok := strings.CutPrefix(raw, "//"); ok {
		// Service-name form: //host[:port]/service
		hostport, svc, found := strings.Cut(rest, "/")
		if !found || svc == "" {
			return "", fmt.Errorf("parse oracle url: missing service name in %q", t.URL)
		}
		service = svc
		var err error
		host, port, err = splitOracleHost(hostport)
		if err != nil {
			return "", err
		}
	} else {
		// Legacy SID form: host:port:sid
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return "", fmt.Errorf("parse oracle url: expected host:port:sid in %q", t.URL)
		}
		host = parts[0]
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", fmt.Errorf("parse oracle url: bad port %q", parts[1])
		}
		port = p
		service = parts[2]
	}

	var user, password string
	if t.HasCredentials() {
		user = t.Username
		password = string(t.Password)
	}

	return go_ora.BuildUrl(host, port, service, user, password, nil), nil
}

func splitOracleHost(hostport string) (string, int, error) {
	host, portStr, ok := strings.Cut(hostport, ":")
	if host == "" {
		return "", 0, fmt.Errorf("parse oracle url: missing host in %q", hostport)
	}
	if !ok {
		return host, oracleDefaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("parse oracle url: bad port %q", portStr)
	}
	return host, port, nil
}
