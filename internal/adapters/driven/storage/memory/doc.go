// Package memory provides in-memory implementations of the driven stores.
// They back tests and the `--ephemeral` CLI mode. Nothing survives a restart.
package memory
