/*
Package config reads the configuration of area tree processing: which
renderer to use and how, whether prepared pages are swapped out to disk,
and how much to trace.

Configuration is read with viper from a file (YAML, TOML or JSON) and the
environment. Environment variables are prefixed with AREATREE_, with dots
and dashes of keys replaced by underscores, e.g. AREATREE_CACHE_DIR.

	renderer:
	  name: xml
	  indent: 2
	  consistent-output: false
	cache:
	  enabled: true
	  dir: /var/tmp
	tracing:
	  adapter: go
	  level: error

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.config'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.config")
}
