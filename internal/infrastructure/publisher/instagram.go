// Package publisher posts accepted content to the Instagram Graph API.
// Publishing is a two-step dance: create a media container, then publish
// it. Stories use the same flow with a STORIES media type.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// InstagramClient implements the Publisher port against the Graph API.
type InstagramClient struct {
	settings   domain.PostingSettings
	httpClient *http.Client
	log        ports.Logger
}

// NewInstagramClient builds a publisher from the posting settings.
func NewInstagramClient(settings domain.PostingSettings, log ports.Logger) *InstagramClient {
	return &InstagramClient{
		settings:   settings,
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		log:        log,
	}
}

// PublishFeed implements ports.Publisher. The caption and hashtags are
// joined the way the platform expects (hashtag block after a blank line).
func (c *InstagramClient) PublishFeed(ctx context.Context, imagePath, caption string, hashtags []string) (domain.PostResult, error) {
	result := domain.PostResult{Surface: domain.SurfaceFeed, PostedAt: time.Now().UTC()}

	fullCaption := caption
	if len(hashtags) > 0 {
		fullCaption += "\n\n" + strings.Join(hashtags, " ")
	}

	containerID, err := c.createContainer(ctx, imagePath, fullCaption, "")
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	mediaID, err := c.publish(ctx, containerID)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	result.Success = true
	result.MediaID = mediaID
	return result, nil
}

// PublishStory implements ports.Publisher.
func (c *InstagramClient) PublishStory(ctx context.Context, imagePath, caption string) (domain.PostResult, error) {
	result := domain.PostResult{Surface: domain.SurfaceStory, PostedAt: time.Now().UTC()}

	containerID, err := c.createContainer(ctx, imagePath, caption, "STORIES")
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	mediaID, err := c.publish(ctx, containerID)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	result.Success = true
	result.MediaID = mediaID
	return result, nil
}

// Verify implements ports.Publisher: a lightweight credential check used by
// the doctor.
func (c *InstagramClient) Verify(ctx context.Context) error {
	token := c.accessToken()
	if token == "" {
		return fmt.Errorf("missing access token: set %s", c.settings.AccessTokenEnvVar)
	}
	endpoint := fmt.Sprintf("%s/me?fields=id,username&access_token=%s", c.baseURL(), url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("account check failed: %s", resp.Status)
	}
	return nil
}

func (c *InstagramClient) createContainer(ctx context.Context, imagePath, caption, mediaType string) (string, error) {
	form := url.Values{}
	form.Set("image_url", c.imageURL(imagePath))
	form.Set("caption", caption)
	form.Set("access_token", c.accessToken())
	if mediaType != "" {
		form.Set("media_type", mediaType)
	}
	return c.postForm(ctx, fmt.Sprintf("%s/%s/media", c.baseURL(), c.settings.AccountID), form)
}

func (c *InstagramClient) publish(ctx context.Context, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", c.accessToken())
	return c.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", c.baseURL(), c.settings.AccountID), form)
}

func (c *InstagramClient) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		ID    string `json:"id"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode graph response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if body.Error != nil {
			return "", fmt.Errorf("graph api: %s", body.Error.Message)
		}
		return "", fmt.Errorf("graph api: %s", resp.Status)
	}
	if body.ID == "" {
		return "", fmt.Errorf("graph api returned no media id")
	}
	return body.ID, nil
}

// imageURL maps a local image path onto the public media host the platform
// fetches from. Uploading to that host is the image pipeline's concern.
func (c *InstagramClient) imageURL(imagePath string) string {
	prefix := c.settings.MediaURLPrefix
	if prefix == "" {
		return imagePath
	}
	return strings.TrimSuffix(prefix, "/") + "/" + filepath.Base(imagePath)
}

func (c *InstagramClient) accessToken() string {
	if c.settings.AccessTokenEnvVar == "" {
		return ""
	}
	return os.Getenv(c.settings.AccessTokenEnvVar)
}

func (c *InstagramClient) baseURL() string {
	return strings.TrimSuffix(c.settings.BaseURL, "/")
}

var _ ports.Publisher = (*InstagramClient)(nil)
