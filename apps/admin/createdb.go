package main

import (
	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/storage/database"
)

func (cli *commandLine) createDB() error {
	return database.CreateIfNotExist(core.Conf)
}
