package cmd

import (
	"github.com/jmoiron/sqlx"
	"github.com/osouvenir/souvenirs/internal/config"
	"github.com/osouvenir/souvenirs/internal/db"
	"github.com/osouvenir/souvenirs/internal/logger"
)

// open loads the configuration and connects to the database without migrating it.
func open() (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.LogLevel, "")

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}
