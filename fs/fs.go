package appfs

import "embed"

// all: keeps the "_" prefixed email layouts.
//
//go:embed all:templates schema
var FS embed.FS
