/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"bytes"
	_ "embed"
)

//go:embed builtin.csv
var builtinCSV []byte

// Builtin returns a small in-memory catalog for running without a database.
func Builtin() (*Static, error) {
	movies, err := ParseCSV(bytes.NewReader(builtinCSV))
	if err != nil {
		return nil, err
	}

	return NewStatic(movies...), nil
}
