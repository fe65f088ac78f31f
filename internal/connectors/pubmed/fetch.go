package pubmed

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
	"github.com/custodia-labs/bioorbit/internal/logger"
)

// text collects all character data of an element, including text inside
// inline markup such as <i> or <sup>.
type text string

func (t *text) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(v)
		}
	}
	*t = text(strings.Join(strings.Fields(sb.String()), " "))
	return nil
}

type abstractText struct {
	Label string
	Text  text
}

// UnmarshalXML keeps the Label attribute and the mixed content body.
func (a *abstractText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "Label" {
			a.Label = attr.Value
		}
	}
	return a.Text.UnmarshalXML(d, start)
}

type pubDate struct {
	Status string `xml:"PubStatus,attr"`
	Year   int    `xml:"Year"`
	Month  string `xml:"Month"`
	Day    int    `xml:"Day"`
}

type pubmedArticle struct {
	PMID     string         `xml:"MedlineCitation>PMID"`
	Title    text           `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract []abstractText `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	History  []pubDate      `xml:"PubmedData>History>PubMedPubDate"`
}

type articleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

// FetchDetails returns records for ids in input order. Identifiers NCBI does
// not return are skipped.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]domain.SourceRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[string]domain.SourceRecord, len(ids))
	now := time.Now().UTC()
	for start := 0; start < len(ids); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(ids))
		batch, err := c.fetchBatch(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, a := range batch {
			byID[a.PMID] = a.record(now)
		}
	}

	records := make([]domain.SourceRecord, 0, len(byID))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			records = append(records, r)
			delete(byID, id)
		}
	}
	if missing := len(ids) - len(records); missing > 0 {
		logger.Debug("efetch returned no article for %d identifiers", missing)
	}
	return records, nil
}

func (c *Client) fetchBatch(ctx context.Context, ids []string) ([]pubmedArticle, error) {
	params := c.params()
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "abstract")
	params.Set("retmode", "xml")

	body, err := c.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}
	return parseArticles(bytes.NewReader(body))
}

func parseArticles(r io.Reader) ([]pubmedArticle, error) {
	var set articleSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode efetch: %w", err)
	}
	return set.Articles, nil
}

func (a pubmedArticle) record(fetchedAt time.Time) domain.SourceRecord {
	pmid := strings.TrimSpace(a.PMID)
	return domain.SourceRecord{
		ID:          pmid,
		Title:       string(a.Title),
		Abstract:    a.abstract(),
		URL:         ArticleURL(pmid),
		PublishedAt: a.entryDate(),
		FetchedAt:   fetchedAt,
	}
}

// abstract joins the abstract sections, prefixing labelled ones
// ("BACKGROUND: ...").
func (a pubmedArticle) abstract() string {
	parts := make([]string, 0, len(a.Abstract))
	for _, section := range a.Abstract {
		body := string(section.Text)
		if body == "" {
			continue
		}
		if section.Label != "" {
			body = section.Label + ": " + body
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n")
}

// entryDate returns the Entrez date, falling back to the pubmed date.
func (a pubmedArticle) entryDate() time.Time {
	var fallback time.Time
	for _, d := range a.History {
		t, ok := d.time()
		if !ok {
			continue
		}
		switch d.Status {
		case "entrez":
			return t
		case "pubmed":
			fallback = t
		}
	}
	return fallback
}

func (d pubDate) time() (time.Time, bool) {
	if d.Year == 0 {
		return time.Time{}, false
	}
	month := 1
	if m, err := strconv.Atoi(d.Month); err == nil && m >= 1 && m <= 12 {
		month = m
	} else if t, err := time.Parse("Jan", d.Month); err == nil {
		month = int(t.Month())
	}
	day := d.Day
	if day == 0 {
		day = 1
	}
	return time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
