package sharecard

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"codeberg.org/snonux/wurdle/internal/errx"
)

// DefaultHostURL is the ImgBB upload endpoint.
const DefaultHostURL = "https://api.imgbb.com/1/upload"

// ImgBBHoster uploads cards to an ImgBB compatible endpoint. Identical PNGs
// are uploaded once per cache lifetime.
type ImgBBHoster struct {
	endpoint string
	apiKey   string
	client   *http.Client
	uploads  *cache.Cache
}

// NewImgBBHoster creates a hoster. An empty endpoint uses DefaultHostURL.
func NewImgBBHoster(endpoint, apiKey string) *ImgBBHoster {
	if endpoint == "" {
		endpoint = DefaultHostURL
	}
	return &ImgBBHoster{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		uploads:  cache.New(24*time.Hour, time.Hour),
	}
}

type imgbbResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the base64 PNG and returns the public URL.
func (h *ImgBBHoster) Upload(ctx context.Context, png []byte, name string) (string, error) {
	sum := sha256.Sum256(png)
	key := hex.EncodeToString(sum[:])
	if u, ok := h.uploads.Get(key); ok {
		return u.(string), nil
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(png))
	form.Set("name", strings.TrimSuffix(name, ".png"))

	endpoint := h.endpoint
	if h.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(h.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errx.New(errx.UploadFailed, "upload", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", errx.New(errx.UploadFailed, "upload", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errx.New(errx.UploadFailed, "upload", err)
	}
	var out imgbbResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errx.New(errx.UploadFailed, "upload", fmt.Errorf("status %d: invalid response: %w", resp.StatusCode, err))
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", errx.New(errx.UploadFailed, "upload", fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	u := out.Data.URL
	if u == "" {
		u = out.Data.DisplayURL
	}
	if u == "" {
		return "", errx.New(errx.UploadFailed, "upload", fmt.Errorf("response has no url"))
	}
	h.uploads.Set(key, u, cache.DefaultExpiration)
	return u, nil
}
