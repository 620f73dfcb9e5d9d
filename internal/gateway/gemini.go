package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for both text and vision requests.
const DefaultModel = "gemini-2.5-flash"

// Gemini is the genai-backed Gateway implementation. The client picks up
// credentials from GEMINI_API_KEY / GOOGLE_API_KEY via the SDK defaults.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini gateway. model may be empty to use DefaultModel.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate implements the Gateway interface.
func (g *Gemini) Generate(ctx context.Context, system, text, imageDataURI string) (string, error) {
	parts := []*genai.Part{}

	if text == "" && imageDataURI != "" {
		text = "Analyze this image and extract data."
	}
	if text != "" {
		parts = append(parts, &genai.Part{Text: text})
	}

	if imageDataURI != "" {
		mimeType, data, err := DecodeDataURI(imageDataURI)
		if err != nil {
			return "", fmt.Errorf("Generate: %w", err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: data},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", classifyProviderError(err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", &ProviderError{Err: errors.New("empty response from model")}
	}
	return rawText, nil
}

// classifyProviderError splits quota rejections from everything else so the
// caller can report rate limiting distinctly.
func classifyProviderError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return &ProviderQuotaError{Err: err}
		}
	}
	return &ProviderError{Err: err}
}

// DecodeDataURI splits a base64 data URI ("data:image/png;base64,....") into
// its MIME type and raw bytes. Bare base64 without the prefix is accepted and
// assumed to be a JPEG, matching what the dashboard uploads.
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	mimeType = "image/jpeg"
	payload := uri

	if strings.HasPrefix(uri, "data:") {
		rest := strings.TrimPrefix(uri, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return "", nil, fmt.Errorf("DecodeDataURI: not a base64 data URI")
		}
		if mt := rest[:semi]; mt != "" {
			mimeType = mt
		}
		payload = rest[semi+len(";base64,"):]
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("DecodeDataURI: decode base64: %w", err)
	}
	return mimeType, data, nil
}
