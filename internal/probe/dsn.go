package probe

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/roach88/lift/internal/sqlschema"
)

// DSNFromURL converts a connection URL into the native DSN of the driver
// for d. Postgres URLs are accepted by lib/pq as is. MySQL URLs are turned
// into go-sql-driver's user:pass@tcp(host)/db form. SQLite URLs drop the
// sqlite:// prefix; file: URIs pass through.
func DSNFromURL(d sqlschema.Dialect, raw string) (string, error) {
	switch d {
	case sqlschema.DialectPostgres:
		return raw, nil

	case sqlschema.DialectSQLite:
		if rest, ok := strings.CutPrefix(raw, "sqlite://"); ok {
			return rest, nil
		}
		if rest, ok := strings.CutPrefix(raw, "sqlite:"); ok {
			return rest, nil
		}
		return raw, nil

	case sqlschema.DialectMySQL:
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse mysql url: %w", err)
		}
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port() == "" && u.Host != "" {
			cfg.Addr = u.Host + ":3306"
		}
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		if q := u.Query(); len(q) > 0 {
			cfg.Params = make(map[string]string, len(q))
			for k := range q {
				cfg.Params[k] = q.Get(k)
			}
		}
		return cfg.FormatDSN(), nil

	default:
		return "", fmt.Errorf("no driver for %s", d)
	}
}
