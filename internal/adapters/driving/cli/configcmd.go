package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bioorbit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/bioorbit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit the configuration file",
	Long: `Reads and edits the TOML configuration file with dotted keys such as
retrieval.diversity_lambda or index.backend. Every edit is validated; an
edit that makes the file invalid is rolled back.`,
	Annotations: map[string]string{annotationStandalone: "true"},
}

var configGetCmd = &cobra.Command{
	Use:         "get [key]",
	Short:       "Print one value, or every value set in the file",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfigStore()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			for _, k := range store.Keys() {
				v, _ := store.Get(k)
				cmd.Printf("%s = %v\n", k, v)
			}
			return nil
		}
		v, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("%s is not set in %s", args[0], store.Path())
		}
		cmd.Println(fmt.Sprint(v))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value",
	Example: `  bioorbit config set retrieval.diversity_lambda 0.7
  bioorbit config set index.backend qdrant
  bioorbit config set ingest.modalities [text,protein]`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfigStore()
		if err != nil {
			return err
		}
		key := args[0]
		prev, had := store.Get(key)
		if err := store.Set(key, parseConfigValue(args[1])); err != nil {
			return err
		}
		if _, err := config.Load(store.Path()); err != nil {
			if had {
				_ = store.Set(key, prev)
			} else {
				_ = store.Unset(key)
			}
			return fmt.Errorf("rejected %s: %w", key, err)
		}
		cmd.Printf("%s updated\n", key)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:         "unset <key>",
	Short:       "Remove a value so the default applies",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openConfigStore()
		if err != nil {
			return err
		}
		if err := store.Unset(args[0]); err != nil {
			return err
		}
		cmd.Printf("%s removed\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationStandalone: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(configPath())
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configUnsetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// openConfigStore opens the store for the directory of the active config
// file. The store always edits config.toml in that directory.
func openConfigStore() (*file.ConfigStore, error) {
	path := configPath()
	if filepath.Base(path) != file.FileName {
		return nil, fmt.Errorf("config editing supports %s files only, got %s", file.FileName, path)
	}
	store, err := file.NewConfigStore(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return store, nil
}

// parseConfigValue converts CLI text to a TOML value: bool, integer, float,
// a [a,b] list of strings, or a plain string.
func parseConfigValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return []string{}
		}
		parts := strings.Split(inner, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return s
}
