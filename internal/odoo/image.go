package odoo

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxImageBytes bounds a downloaded avatar.
const maxImageBytes = 10 << 20

// ImageFetcher downloads profile pictures for image_1920.
type ImageFetcher struct {
	client *http.Client
}

func NewImageFetcher(timeout time.Duration) *ImageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ImageFetcher{client: &http.Client{Timeout: timeout}}
}

// FetchBase64 downloads url with a browser User-Agent and returns the body
// base64-encoded. An empty url yields "" and no error.
func (f *ImageFetcher) FetchBase64(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "image: build request")
	}
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "image: get %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.New(fmt.Sprintf("image: get %s: status %d", url, resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", eris.Wrapf(err, "image: read %s", url)
	}
	return base64.StdEncoding.EncodeToString(body), nil
}
