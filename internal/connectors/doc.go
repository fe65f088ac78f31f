// Package connectors holds the literature sources bioorbit ingests from.
// Each connector implements driven.LiteratureSource for one upstream
// database.
package connectors
