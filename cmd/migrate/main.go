package main

import (
	"flag"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/dlobex/dlobex/config"
	"github.com/dlobex/dlobex/pkg/infra"
	"github.com/dlobex/dlobex/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.Init("dlobex-migrate", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	infra.Migrate("file://migration/sql", cfg.SettlementDB.MigrationConnURL)
}
