package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shelf-scan/api/internal/catalog"
	"shelf-scan/api/internal/pipeline"
)

const pageSize = 10

type Client struct {
	BaseURL   string
	UserAgent string
	httpc     *http.Client
}

func New(baseURL, userAgent string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Products []struct {
		Code          string `json:"code"`
		ProductName   string `json:"product_name"`
		Brands        string `json:"brands"`
		Categories    string `json:"categories"`
		ImageFrontURL string `json:"image_front_url"`
	} `json:"products"`
}

// FindCandidates ищет товары по label. Каталог текстовый, crop не используется.
// Пустой результат — не ошибка.
func (c *Client) FindCandidates(ctx context.Context, label string, _ []byte) ([]catalog.Candidate, error) {
	if strings.TrimSpace(label) == "" {
		return nil, fmt.Errorf("%w: empty label", pipeline.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("search_terms", label)
	q.Set("search_simple", "1")
	q.Set("action", "process")
	q.Set("json", "1")
	q.Set("page_size", fmt.Sprint(pageSize))
	q.Set("fields", "code,product_name,brands,categories,image_front_url")

	reqURL := c.BaseURL + "/cgi/search.pl?" + q.Encode()
	req, _ := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: catalog %d: %s", pipeline.ErrCatalogUnavailable, resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: bad catalog JSON: %v", pipeline.ErrCatalogUnavailable, err)
	}

	cands := make([]catalog.Candidate, 0, len(out.Products))
	for _, p := range out.Products {
		if p.Code == "" || p.ProductName == "" {
			continue
		}
		cands = append(cands, catalog.Candidate{
			ID:          uuid.NewString(),
			GTIN:        p.Code,
			ProductName: p.ProductName,
			BrandName:   firstCSV(p.Brands),
			Category:    firstCSV(p.Categories),
			ImageURL:    p.ImageFrontURL,
		})
	}
	return cands, nil
}

// firstCSV — OFF отдаёт brands/categories строкой через запятую; берём первую.
func firstCSV(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
