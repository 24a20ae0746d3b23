package dslhost

import _ "embed"

// Version is the release version of dslhost, read from the VERSION file.
//
//go:embed VERSION
var Version string
