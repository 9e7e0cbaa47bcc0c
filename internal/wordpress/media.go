package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// media is the subset of the WordPress media resource this tool reads.
type media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// UploadMediaFromURL downloads an image and uploads it to the media library,
// returning the attachment ID for use as featured_media.
func (c *Client) UploadMediaFromURL(ctx context.Context, imageURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch image %s: %w", imageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to fetch image %s: HTTP %d", imageURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	filename := mediaFilename(imageURL, contentType)

	upload, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wp-json/wp/v2/media", bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to create upload request: %w", err)
	}
	upload.SetBasicAuth(c.username, c.appPassword)
	upload.Header.Set("Content-Type", contentType)
	upload.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	uploadResp, err := c.httpClient.Do(upload)
	if err != nil {
		return 0, fmt.Errorf("media upload failed: %w", err)
	}
	defer func() { _ = uploadResp.Body.Close() }()

	respBody, err := io.ReadAll(uploadResp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload response: %w", err)
	}
	if uploadResp.StatusCode < 200 || uploadResp.StatusCode > 299 {
		return 0, &APIError{
			Method:     http.MethodPost,
			Endpoint:   "media",
			StatusCode: uploadResp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	var m media
	if err := json.Unmarshal(respBody, &m); err != nil {
		return 0, fmt.Errorf("failed to decode media response: %w", err)
	}
	return m.ID, nil
}

// mediaFilename derives an upload filename from the URL path, falling back
// to a generic name with an extension matching the content type.
func mediaFilename(imageURL, contentType string) string {
	name := path.Base(imageURL)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name != "" && name != "." && name != "/" && strings.Contains(name, ".") {
		return name
	}
	switch {
	case strings.Contains(contentType, "png"):
		return "featured.png"
	case strings.Contains(contentType, "gif"):
		return "featured.gif"
	case strings.Contains(contentType, "webp"):
		return "featured.webp"
	default:
		return "featured.jpg"
	}
}
