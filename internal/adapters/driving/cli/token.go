package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	bhttp "github.com/custodia-labs/bioorbit/internal/adapters/driving/http"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
	tokenSecret  string
)

var errNoJWTSecret = errors.New("no signing secret: set http.jwt_secret or pass --secret")

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the ingestion API",
	Long: `Signs an HS256 token with http.jwt_secret. Send it as
"Authorization: Bearer <token>" to POST /ingest.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE:        runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "bioorbit", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret (default from config)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	secret := tokenSecret
	if secret == "" {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		secret = cfg.HTTP.JWTSecret
	}
	if secret == "" {
		return errNoJWTSecret
	}

	token, err := bhttp.IssueToken(secret, tokenSubject, tokenTTL)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	cmd.Println(token)
	return nil
}
