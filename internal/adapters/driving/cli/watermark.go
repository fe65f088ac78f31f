package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark",
	Short: "Inspect or change the ingestion watermark",
	Long: `The watermark is the publication date up to which records have been
ingested. Each run fetches only records published after it.`,
}

var watermarkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current watermark",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if watermarkService == nil {
			return errNotBootstrapped
		}
		wm, err := watermarkService.GetWatermark(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading watermark: %w", err)
		}
		if wm == nil {
			cmd.Println("No watermark set; the next run fetches all matching records.")
			return nil
		}
		cmd.Println(domain.FormatWatermark(*wm))
		return nil
	},
}

var watermarkSetCmd = &cobra.Command{
	Use:     "set <YYYY/MM/DD>",
	Short:   "Override the watermark",
	Example: "  bioorbit watermark set 2024/01/01",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watermarkService == nil {
			return errNotBootstrapped
		}
		date, err := domain.ParseWatermark(args[0])
		if err != nil {
			return err
		}
		if err := watermarkService.SetWatermark(cmd.Context(), date); err != nil {
			return fmt.Errorf("setting watermark: %w", err)
		}
		cmd.Printf("Watermark set to %s\n", domain.FormatWatermark(date))
		return nil
	},
}

var watermarkResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the watermark so the next run starts from scratch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if watermarkService == nil {
			return errNotBootstrapped
		}
		if err := watermarkService.ResetWatermark(cmd.Context()); err != nil {
			return fmt.Errorf("resetting watermark: %w", err)
		}
		cmd.Println("Watermark cleared.")
		return nil
	},
}

func init() {
	watermarkCmd.AddCommand(watermarkShowCmd, watermarkSetCmd, watermarkResetCmd)
	rootCmd.AddCommand(watermarkCmd)
}
