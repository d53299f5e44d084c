package docparser

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/giygas/infomed-parser/logging"
)

// Downloader fetches document exports over HTTP from a remote export
// directory, one file per request.
type Downloader struct {
	baseURL string
	client  *http.Client
}

func NewDownloader(baseURL string) *Downloader {
	return &Downloader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (d *Downloader) Load(filename string) (string, error) {
	url := d.baseURL + "/" + path.Base(filename)

	response, err := d.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", response.StatusCode, url)
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return DecodeDocument(bodyBytes)
}

// Compile-time check that Downloader implements Source
var _ Source = (*Downloader)(nil)
