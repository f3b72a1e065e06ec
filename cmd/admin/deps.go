package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/deadlinr/backend/conf"
	"github.com/jackc/pgx/v5/pgxpool"
)

func loadConf() (conf.Config, error) {
	cfg, err := conf.Load()
	if err != nil {
		return conf.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func connectPg(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := loadConf()
	if err != nil {
		return nil, err
	}
	connStr, err := cfg.ConnString(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

func loadAWS(ctx context.Context) (conf.Config, aws.Config, error) {
	cfg, err := loadConf()
	if err != nil {
		return conf.Config{}, aws.Config{}, err
	}
	awsCfg, err := cfg.LoadAWS(ctx)
	if err != nil {
		return conf.Config{}, aws.Config{}, err
	}
	return cfg, awsCfg, nil
}
