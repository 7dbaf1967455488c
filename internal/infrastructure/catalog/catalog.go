package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"LichessIngest/internal/domain"
	"LichessIngest/internal/ports"
)

var archiveExpr = regexp.MustCompile(`lichess_db_([A-Za-z0-9]+)_rated_(\d{4})-(\d{2})\.pgn\.zst$`)

// Client reads the repository index page and reports published archives.
type Client struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

var _ ports.Catalog = (*Client)(nil)

// NewClient wires the shared resty client against baseURL.
func NewClient(client *resty.Client, baseURL string, logger *slog.Logger) *Client {
	if client == nil {
		client = resty.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{client: client, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Available lists the months published for variant, newest first.
func (c *Client) Available(ctx context.Context, variant domain.Variant) ([]domain.Month, error) {
	doc, err := c.fetchDocument(ctx, c.baseURL+"/")
	if err != nil {
		return nil, err
	}

	months := extractMonths(doc, variant)
	c.logger.Debug("catalog parsed", "variant", variant, "months", len(months))
	return months, nil
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("request index: %w", err)
	}
	body := resp.RawBody()
	if body == nil {
		return nil, fmt.Errorf("request index: empty response")
	}
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("repository index returned %s", resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return doc, nil
}

func extractMonths(doc *goquery.Document, variant domain.Variant) []domain.Month {
	seen := map[domain.Month]struct{}{}
	var months []domain.Month

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		month, ok := parseArchiveLink(href, variant)
		if !ok {
			return
		}
		if _, dup := seen[month]; dup {
			return
		}
		seen[month] = struct{}{}
		months = append(months, month)
	})

	sort.Slice(months, func(i, j int) bool {
		return months[j].Before(months[i])
	})
	return months
}

func parseArchiveLink(href string, variant domain.Variant) (domain.Month, bool) {
	match := archiveExpr.FindStringSubmatch(strings.TrimSpace(href))
	if match == nil || match[1] != string(variant) {
		return domain.Month{}, false
	}
	year, err := strconv.Atoi(match[2])
	if err != nil {
		return domain.Month{}, false
	}
	month, err := strconv.Atoi(match[3])
	if err != nil {
		return domain.Month{}, false
	}
	m, err := domain.NewMonth(year, month)
	if err != nil {
		return domain.Month{}, false
	}
	return m, true
}
