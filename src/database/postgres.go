package database

import (
	"context"
	"fmt"

	"stockbot/src/config"
	aws_handler "stockbot/src/utils/aws"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DSN builds the connection string, preferring connection_string when set.
func DSN(cfg config.SQLConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.Port)
}

// ResolvePassword replaces the configured password with the AWS secret when
// passwordSecretId is set.
func ResolvePassword(ctx context.Context, cfg *config.SQLConfig) error {
	if cfg.PasswordSecretID == "" {
		return nil
	}
	secrets, err := aws_handler.NewSecretManager(cfg.AWSRegion)
	if err != nil {
		return fmt.Errorf("create secrets manager client: %w", err)
	}
	password, err := secrets.GetSecretValue(ctx, cfg.PasswordSecretID)
	if err != nil {
		return err
	}
	cfg.Password = password
	return nil
}

func SetupDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	sqlCfg := cfg.Databases.SQL
	if err := ResolvePassword(ctx, &sqlCfg); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(DSN(sqlCfg))
	if err != nil {
		return nil, err
	}
	if sqlCfg.MaxConns > 0 {
		poolConfig.MaxConns = sqlCfg.MaxConns
	}
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
