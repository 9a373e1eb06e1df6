package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/scholarmail"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}

		id, err := deps.Store.InsertOne(deps.Ctx, scholarmail.EmailCollection, scholarmail.NewEmailRecord(string(data), deps.now()))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
			return err
		}

		fmt.Fprintf(deps.Stdout, "Imported %s as email %s\n", path, id)
	}
	return nil
}
