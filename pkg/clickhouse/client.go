package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

// Options describes one ClickHouse endpoint. Zero values fall back to the
// server defaults used in local development.
type Options struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	HTTP        bool
	AsyncInsert bool
	DialTimeout time.Duration
	ReadTimeout time.Duration
	MaxExecTime time.Duration
}

func (o Options) withDefaults() Options {
	if o.Port == 0 {
		o.Port = 9000
	}
	if o.Database == "" {
		o.Database = "default"
	}
	if o.User == "" {
		o.User = "default"
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 10 * time.Second
	}
	return o
}

// chOptions translates to the driver's options. Async inserts still wait
// for the server flush so write errors reach the caller.
func (o Options) chOptions() *ch.Options {
	settings := ch.Settings{}
	if o.MaxExecTime > 0 {
		settings["max_execution_time"] = int(o.MaxExecTime.Seconds())
	}
	if o.AsyncInsert {
		settings["async_insert"] = 1
		settings["wait_for_async_insert"] = 1
	}
	protocol := ch.Native
	if o.HTTP {
		protocol = ch.HTTP
	}
	return &ch.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", o.Host, o.Port)},
		Protocol: protocol,
		Auth: ch.Auth{
			Database: o.Database,
			Username: o.User,
			Password: o.Password,
		},
		Settings:    settings,
		DialTimeout: o.DialTimeout,
		ReadTimeout: o.ReadTimeout,
	}
}

// Client owns a small ClickHouse pool exposed as *sql.DB.
type Client struct {
	db *sql.DB
}

// NewClient opens the pool and pings the server within the dial timeout.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.Host == "" {
		return nil, errors.New("clickhouse: host is required")
	}
	opts = opts.withDefaults()

	db := ch.OpenDB(opts.chOptions())
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &Client{db: db}, nil
}

func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema (statement %d): %w", i, err)
		}
	}
	return nil
}
