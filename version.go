package calcpad

import _ "embed"

// Version is the release of the calcpad module.
//
//go:embed VERSION
var Version string
