// Package fetch - image.go downloads listing images for multimodal
// adjudication.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxImageBytes caps image downloads; listing thumbnails are small and
// anything larger is not worth sending to the model.
const maxImageBytes = 4 << 20

// imageTimeout is shorter than the page timeout: a slow image should not
// stall a classification.
const imageTimeout = 10 * time.Second

// Image downloads an image URL and returns its bytes with the MIME subtype
// ("jpeg", "png", "webp"). Non-image content types are an error.
func Image(ctx context.Context, urlStr string) (subtype string, data []byte, err error) {
	client := &http.Client{Timeout: imageTimeout}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return "", nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, &Error{URL: urlStr, Message: "not an image: " + contentType}
	}
	subtype = strings.TrimPrefix(contentType, "image/")
	if idx := strings.Index(subtype, ";"); idx >= 0 {
		subtype = subtype[:idx]
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", nil, &Error{URL: urlStr, Message: "failed to read image body", Cause: err}
	}
	if len(data) == 0 {
		return "", nil, &Error{URL: urlStr, Message: "empty image body"}
	}

	return subtype, data, nil
}
