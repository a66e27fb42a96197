package asset

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// uploadResponse is what the upload service answers with.
type uploadResponse struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
}

// RemoteUploader posts avatars as multipart form data to an upload service.
type RemoteUploader struct {
	url  string
	http *resty.Client
}

// NewRemoteUploader targets url; token, when set, is sent as a bearer token.
func NewRemoteUploader(url, token string) *RemoteUploader {
	c := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &RemoteUploader{url: url, http: c}
}

func (u *RemoteUploader) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	name, err := objectName(filename)
	if err != nil {
		return "", err
	}
	var out uploadResponse
	resp, err := u.http.R().
		SetContext(ctx).
		SetFileReader("file", name, io.LimitReader(body, MaxAvatarBytes)).
		SetResult(&out).
		Post(u.url)
	if err != nil {
		return "", fmt.Errorf("asset: upload: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("asset: upload: status %d", resp.StatusCode())
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL == "" {
		return "", fmt.Errorf("asset: upload: empty url in response")
	}
	return out.URL, nil
}
