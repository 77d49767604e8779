// Package util loads label images from files and URLs.
package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"

	// Register the decoders of every format a label image may use.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DownloadFile downloads the file at the given URL using the HTTP GET method and returns its contents and MIME type.
func DownloadFile(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("request failed: %v", resp.Status)
	}

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(contents)
	}
	return contents, contentType, nil
}

// IsURL returns true if source names an HTTP or HTTPS resource.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// LoadImage decodes the image at source, which is either a file path, "-" for stdin, or an HTTP(S) URL.
func LoadImage(ctx context.Context, source string) (image.Image, error) {
	var contents []byte
	var err error
	switch {
	case source == "-":
		contents, err = io.ReadAll(os.Stdin)
	case IsURL(source):
		contents, _, err = DownloadFile(ctx, source)
	default:
		contents, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	img, err := DecodeImage(contents)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	return img, nil
}

// DecodeImage decodes an image in any registered format.
func DecodeImage(contents []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(contents))
	return img, err
}
