package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Use == "tui" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTUICmd_Descriptions(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "Cycle modality")
	assert.Contains(t, tuiCmd.Long, "Run ingestion")
}

func TestTUICmd_RequiresServices(t *testing.T) {
	SetServices(nil)
	SetBootstrap(nil)

	_, err := execute(t, "tui")

	assert.ErrorIs(t, err, errNotBootstrapped)
}
