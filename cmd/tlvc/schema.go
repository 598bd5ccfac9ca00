package main

import "github.com/yzsnstotz/tlvc/jsonschema"

// Run executes the schema command.
func (c *SchemaCmd) Run(deps *Dependencies) error {
	b, err := jsonschema.MarshalProfileSchema()
	if err != nil {
		return err
	}
	_, err = deps.Stdout.Write(b)
	return err
}
