package persist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/honeyhive/server/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// maxHiveConns caps the pool. The Saver serializes snapshot and ledger
// writes, so one connection does the saving and one serves reports.
const maxHiveConns = 4

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Debug("save database ready",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Duration("idle_time", poolCfg.MaxConnIdleTime))
	return &DB{Pool: pool, log: log}, nil
}

// poolConfig parses the DSN and sizes the pool for a single hive.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	conns := cfg.MaxOpenConns
	if conns <= 0 || conns > maxHiveConns {
		conns = maxHiveConns
	}
	idle := min(max(cfg.MaxIdleConns, 0), conns)
	poolCfg.MaxConns = int32(conns)
	poolCfg.MinConns = int32(idle)
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	params := poolCfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = "honeyhive"
	}
	if cfg.QueryTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.QueryTimeout.Milliseconds(), 10)
	}
	return poolCfg, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
