package db

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// PgpassProvider looks up the password in a PostgreSQL password file.
// See: https://www.postgresql.org/docs/current/libpq-pgpass.html
type PgpassProvider struct {
	path     string
	host     string
	port     int
	database string
	username string
}

// NewPgpassProvider creates a provider for cfg's host, port, database and
// user. An empty path selects the platform default location.
func NewPgpassProvider(path string, cfg *pg2duck.ConnectionConfig) *PgpassProvider {
	if path == "" {
		path = defaultPassFile()
	}
	return &PgpassProvider{
		path:     path,
		host:     cfg.Host,
		port:     cfg.Port,
		database: cfg.Database,
		username: cfg.Username,
	}
}

func defaultPassFile() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "postgresql", "pgpass.conf")
		}
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

func (p *PgpassProvider) Password(ctx context.Context) (string, time.Time, error) {
	if p.path == "" {
		return "", time.Time{}, errNoPassword
	}

	f, err := os.Open(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", time.Time{}, errNoPassword
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to open password file: %w", err)
	}
	defer f.Close()

	password, ok, err := lookupPgpass(f, p.host, strconv.Itoa(p.port), p.database, p.username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read password file %s: %w", p.path, err)
	}
	if !ok {
		return "", time.Time{}, errNoPassword
	}
	return password, time.Time{}, nil
}

func (p *PgpassProvider) String() string {
	return fmt.Sprintf("Pgpass(%s)", p.path)
}

// lookupPgpass returns the password of the first line matching all four
// fields. "*" matches anything; "\:" and "\\" are escapes.
func lookupPgpass(r io.Reader, host, port, database, username string) (string, bool, error) {
	want := [4]string{host, port, database, username}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitPgpassLine(line)
		if len(fields) != 5 {
			continue
		}

		matched := true
		for i, w := range want {
			if fields[i] != "*" && fields[i] != w {
				matched = false
				break
			}
		}
		if matched {
			return fields[4], true, nil
		}
	}
	return "", false, scanner.Err()
}

func splitPgpassLine(line string) []string {
	var fields []string
	var current strings.Builder
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && i+1 < len(line):
			i++
			current.WriteByte(line[i])
		case c == ':' && len(fields) < 4:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, current.String())
}
