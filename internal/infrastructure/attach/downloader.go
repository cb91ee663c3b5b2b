// Package attach downloads documents linked from collected articles.
package attach

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

// Downloader fetches attachment files into a local directory.
type Downloader struct {
	dir    string
	client *http.Client
}

var _ ports.AttachmentStore = (*Downloader)(nil)

// New builds a downloader storing files under dir.
func New(dir string, client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{dir: dir, client: client}
}

// Download fetches the document at rawURL and writes it under the
// downloader's directory. Name collisions get a numeric suffix.
func (d *Downloader) Download(ctx context.Context, rawURL string) (domain.Attachment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Attachment{}, fmt.Errorf("attachment fetch returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return domain.Attachment{}, fmt.Errorf("create attachment dir: %w", err)
	}

	filename := filenameFromURL(rawURL)
	dest, err := d.uniquePath(filename)
	if err != nil {
		return domain.Attachment{}, err
	}

	file, err := os.Create(dest)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("create attachment file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(dest)
		return domain.Attachment{}, fmt.Errorf("write attachment: %w", err)
	}

	return domain.Attachment{
		URL:      rawURL,
		Filename: filepath.Base(dest),
		Path:     dest,
	}, nil
}

func (d *Downloader) uniquePath(filename string) (string, error) {
	dest := filepath.Join(d.dir, filename)
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest, nil
		} else if err != nil {
			return "", fmt.Errorf("stat attachment path: %w", err)
		}
		dest = filepath.Join(d.dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "attachment"
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "attachment"
	}
	return name
}
