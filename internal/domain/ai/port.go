package ai

import (
	"context"
	"io"
)

// AssetState is the processing state of a file held by the AI provider.
type AssetState string

const (
	AssetStateUnspecified AssetState = "STATE_UNSPECIFIED"
	AssetStateProcessing  AssetState = "PROCESSING"
	AssetStateActive      AssetState = "ACTIVE"
	AssetStateFailed      AssetState = "FAILED"
)

// Asset is the provider-side handle of an uploaded file.
type Asset struct {
	Name     string     `json:"name"`
	URI      string     `json:"uri"`
	MIMEType string     `json:"mime_type"`
	State    AssetState `json:"state"`
	// Reason is the provider message attached to a FAILED asset, if any.
	Reason string `json:"reason,omitempty"`
}

// Ready reports whether the asset can be referenced in a generation request.
func (a *Asset) Ready() bool { return a != nil && a.State == AssetStateActive }

// Client is the port to the remote generative-AI service.
type Client interface {
	UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*Asset, error)
	GetFile(ctx context.Context, name string) (*Asset, error)
	DeleteFile(ctx context.Context, name string) error
	// Generate sends prompt together with the asset reference and returns
	// the first text part of the first candidate.
	Generate(ctx context.Context, prompt string, asset *Asset) (string, error)
}
