// Package migrations embeds the service schema so tests and tooling apply the
// same DDL as deployments.
package migrations

import _ "embed"

//go:embed 001_init.sql
var InitSQL string
