package main

import (
	"github.com/dmtshikala/academia/storage/database"
)

var migrateRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	return migrateRunFunc(command, cli.db)
}
