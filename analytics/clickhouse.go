package analytics

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	goerrors "github.com/goliatone/go-errors"
)

// Config holds the ClickHouse connection settings.
type Config struct {
	Addr     []string
	Database string
	Username string
	Password string
}

// NewConn opens a native TCP connection to ClickHouse and verifies it
// with a ping.
func NewConn(cfg Config) (clickhouse.Conn, error) {
	if len(cfg.Addr) == 0 {
		return nil, goerrors.New("clickhouse address is required", goerrors.CategoryBadInput)
	}

	options := &clickhouse.Options{
		Addr: cfg.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "pixelpanel", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to connect to clickhouse")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to ping clickhouse")
	}

	return conn, nil
}
