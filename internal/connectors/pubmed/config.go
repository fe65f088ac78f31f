package pubmed

import "time"

// Defaults for the E-utilities client.
const (
	DefaultBaseURL   = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTool      = "bioorbit"
	DefaultBatchSize = 200
	DefaultTimeout   = 30 * time.Second

	// RateWithoutKey and RateWithKey are the NCBI request limits per second.
	RateWithoutKey = 3
	RateWithKey    = 10

	// ArticleURLPrefix builds the canonical record link.
	ArticleURLPrefix = "https://pubmed.ncbi.nlm.nih.gov/"

	db = "pubmed"
)

// Config configures the client.
type Config struct {
	BaseURL   string
	Tool      string
	Email     string
	APIKey    string
	BatchSize int
	Timeout   time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Tool == "" {
		c.Tool = DefaultTool
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// ArticleURL returns the PubMed page for pmid.
func ArticleURL(pmid string) string {
	return ArticleURLPrefix + pmid + "/"
}
