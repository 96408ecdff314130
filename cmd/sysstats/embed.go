package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Packagers may overwrite default_config.yaml before compiling to ship
// different defaults, for example host mount roots for a container image.
//
//go:embed default_config.yaml
var embeddedConfig []byte
