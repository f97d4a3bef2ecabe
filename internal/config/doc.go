// Package config loads tfcprobe settings from local and global YAML files and
// reads object definition files. The CLI applies precedence (flags over local
// over global); this package only parses.
package config
