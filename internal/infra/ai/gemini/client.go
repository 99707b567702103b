package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/genai"

	domai "github.com/bryanwahyu/automaton-ux/internal/domain/ai"
)

const DefaultModel = "gemini-3-flash-preview"

// Client talks to the Gemini Files API and GenerateContent.
type Client struct {
	*genai.Client
	Model string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	return newClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newClient(ctx context.Context, cc *genai.ClientConfig, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{Client: cli, Model: model}, nil
}

func (c *Client) UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*domai.Asset, error) {
	f, err := c.Files.Upload(ctx, r, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", mapError(err))
	}
	return toAsset(f), nil
}

func (c *Client) GetFile(ctx context.Context, name string) (*domai.Asset, error) {
	f, err := c.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", name, mapError(err))
	}
	return toAsset(f), nil
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	if _, err := c.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", name, mapError(err))
	}
	return nil
}

func (c *Client) Generate(ctx context.Context, prompt string, asset *domai.Asset) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromURI(asset.URI, asset.MIMEType),
		}, genai.RoleUser),
	}
	resp, err := c.Models.GenerateContent(ctx, c.Model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", mapError(err))
	}
	return firstText(resp)
}

// Check looks up the configured model, which needs a valid key and a
// reachable API.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.Models.Get(ctx, c.Model, nil); err != nil {
		return fmt.Errorf("gemini model %s: %w", c.Model, mapError(err))
	}
	return nil
}

// firstText returns the first text part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domai.ErrEmptyResponse)
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		reason := ""
		if cand != nil {
			reason = string(cand.FinishReason)
		}
		return "", fmt.Errorf("%w: candidate has no content (finish reason %q)", domai.ErrEmptyResponse, reason)
	}
	part := cand.Content.Parts[0]
	if part == nil || part.Text == "" {
		return "", fmt.Errorf("%w: first part has no text", domai.ErrEmptyResponse)
	}
	return part.Text, nil
}

func toAsset(f *genai.File) *domai.Asset {
	a := &domai.Asset{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
		State:    domai.AssetState(f.State),
	}
	if a.State == "" {
		a.State = domai.AssetStateUnspecified
	}
	if f.Error != nil {
		a.Reason = f.Error.Message
	}
	return a
}

// mapError turns provider quota errors into domai.ErrQuotaExceeded.
func mapError(err error) error {
	var code int
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domai.ErrQuotaExceeded, err)
	}
	return err
}
