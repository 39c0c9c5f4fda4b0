// Package config provides configuration structures and utilities for philowalk.
// It defines the walk settings, the optional .philowalk YAML file, and the
// XDG directories used for the history database.
package config
