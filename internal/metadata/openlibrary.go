package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/MadiBrom/ClassShelf/internal/model"
	"github.com/MadiBrom/ClassShelf/pkg/breaker"
)

type Config struct {
	BaseURL string        `envconfig:"OPENLIBRARY_URL" default:"https://openlibrary.org"`
	Timeout time.Duration `envconfig:"OPENLIBRARY_TIMEOUT" default:"10s"`
	Limit   int           `envconfig:"OPENLIBRARY_LIMIT" default:"12"`
}

const searchFields = "key,title,author_name,isbn,cover_i,first_sentence"

// Client queries the Open Library search API. A circuit breaker sheds load
// once the provider starts failing; callers treat any error as "no results".
type Client struct {
	cfg    Config
	client *http.Client
	cb     *breaker.Breaker
	log    *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     breaker.New(10, 30*time.Second, 0.5, 3),
		log:    log.Named("openlibrary"),
	}
}

type searchDoc struct {
	Key           string          `json:"key"`
	Title         string          `json:"title"`
	AuthorName    []string        `json:"author_name"`
	Isbn          []string        `json:"isbn"`
	CoverI        int             `json:"cover_i"`
	FirstSentence json.RawMessage `json:"first_sentence"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

func (c *Client) Search(ctx context.Context, query string) ([]model.BookCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.BookCandidate{}, nil
	}

	var out []model.BookCandidate
	err := c.cb.Call(func() error {
		candidates, err := c.search(ctx, query)
		if err != nil {
			return err
		}
		out = candidates
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, query string) ([]model.BookCandidate, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d&fields=%s",
		c.cfg.BaseURL, url.QueryEscape(query), c.cfg.Limit, url.QueryEscape(searchFields))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("open library search: status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	candidates := make([]model.BookCandidate, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		if doc.Title == "" {
			continue
		}
		isbn13 := pickIsbn13(doc.Isbn)
		candidates = append(candidates, model.BookCandidate{
			ExternalID:  doc.Key,
			Title:       doc.Title,
			Authors:     doc.AuthorName,
			Isbn13:      isbn13,
			CoverURL:    coverURL(doc.CoverI, isbn13),
			Description: firstSentence(doc.FirstSentence),
		})
	}
	c.log.Debug("search", zap.String("query", query), zap.Int("results", len(candidates)))
	return candidates, nil
}

// pickIsbn13 keeps the first all-digit 13-character identifier after
// stripping separators.
func pickIsbn13(isbns []string) string {
	for _, raw := range isbns {
		var b strings.Builder
		for _, r := range strings.ToUpper(raw) {
			if (r >= '0' && r <= '9') || r == 'X' {
				b.WriteRune(r)
			}
		}
		v := b.String()
		if len(v) == 13 && !strings.Contains(v, "X") {
			return v
		}
	}
	return ""
}

func coverURL(coverID int, isbn13 string) string {
	if coverID != 0 {
		return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", coverID)
	}
	if isbn13 != "" {
		return fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-M.jpg", isbn13)
	}
	return ""
}

// firstSentence tolerates both shapes the API serves: a plain string array
// and an object with a "value" field.
func firstSentence(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asStrings []string
	if err := json.Unmarshal(raw, &asStrings); err == nil {
		if len(asStrings) > 0 {
			return asStrings[0]
		}
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asObj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &asObj); err == nil {
		return asObj.Value
	}
	return ""
}
