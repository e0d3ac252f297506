package main

import (
	"log"
	"os"

	"gopkg.in/urfave/cli.v2"
)

import _ "github.com/joho/godotenv/autoload"

const (
	flagConfig   = "config"
	flagAddr     = "addr"
	flagDriver   = "driver"
	flagDSN      = "dsn"
	flagLogLevel = "log-level"
)

var version = "dev"

var commands = []*cli.Command{
	{
		Name:  "serve",
		Usage: "Run the todos HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Usage:   "Path to a YAML or JSON config file.",
				EnvVars: []string{"TODOS_CONFIG"},
			},
			&cli.StringFlag{
				Name:  flagAddr,
				Usage: "The address to listen on, overrides server.addr.",
			},
			&cli.StringFlag{
				Name:  flagDriver,
				Usage: "The database driver (sqlite3, postgres, pgx), overrides database.driver.",
			},
			&cli.StringFlag{
				Name:  flagDSN,
				Usage: "The database connection string, overrides database.dsn.",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "The log level (debug, info, warn, error), overrides log.level.",
			},
		},
		Action: runServe,
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "todos",
		Usage:    "A minimal todo-list REST service",
		Version:  version,
		Commands: commands,
	}
}

func main() {
	app := newApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
