package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	domai "github.com/bryanwahyu/automaton-ux/internal/domain/ai"
)

func TestFirstText(t *testing.T) {
	textPart := &genai.Part{Text: "```json\n{}\n```"}

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr bool
	}{
		{name: "nil response", resp: nil, wantErr: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: true},
		{name: "nil content", resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}, wantErr: true},
		{name: "no parts", resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
		}, wantErr: true},
		{name: "empty text", resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{}}}}},
		}, wantErr: true},
		{name: "first part of first candidate", resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{textPart, {Text: "second"}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "other candidate"}}}},
			},
		}, want: "```json\n{}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := firstText(tt.resp)
			if tt.wantErr {
				assert.ErrorIs(t, err, domai.ErrEmptyResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToAsset(t *testing.T) {
	a := toAsset(&genai.File{
		Name:     "files/abc123",
		URI:      "https://generativelanguage.googleapis.com/v1beta/files/abc123",
		MIMEType: "video/mp4",
		State:    genai.FileStateProcessing,
	})
	assert.Equal(t, "files/abc123", a.Name)
	assert.Equal(t, domai.AssetStateProcessing, a.State)
	assert.False(t, a.Ready())

	failed := toAsset(&genai.File{
		Name:  "files/bad",
		State: genai.FileStateFailed,
		Error: &genai.FileStatus{Message: "unsupported codec"},
	})
	assert.Equal(t, domai.AssetStateFailed, failed.State)
	assert.Equal(t, "unsupported codec", failed.Reason)

	assert.Equal(t, domai.AssetStateUnspecified, toAsset(&genai.File{Name: "files/x"}).State)
	assert.True(t, toAsset(&genai.File{State: genai.FileStateActive}).Ready())
}

func TestMapError(t *testing.T) {
	quota := fmt.Errorf("wrapped: %w", genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"})
	mapped := mapError(quota)
	assert.ErrorIs(t, mapped, domai.ErrQuotaExceeded)

	var apiErr genai.APIError
	require.ErrorAs(t, mapped, &apiErr)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)

	notFound := genai.APIError{Code: 404, Message: "not found"}
	assert.NotErrorIs(t, mapError(notFound), domai.ErrQuotaExceeded)

	plain := errors.New("connection reset")
	assert.Same(t, plain, mapError(plain))
}
