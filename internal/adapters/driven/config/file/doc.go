// Package file provides the TOML-backed key/value configuration store used by
// `bioorbit config get|set`. Keys use dot notation ("index.backend") and are
// written back as nested tables, so the file stays readable by the typed
// loader in internal/config.
package file
