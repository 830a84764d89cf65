// Package gemini implements the image provider against the Gemini API.
//
// Two model tiers are used: the flash model handles 1K generation and
// all edits, the pro model handles 2K/4K generation and all upscales.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spaceai/spaceai/internal/payload"
	"github.com/spaceai/spaceai/internal/provider"
	"github.com/spaceai/spaceai/internal/state"
)

const (
	defaultFlashModel = "gemini-2.5-flash-image"
	defaultProModel   = "gemini-3-pro-image-preview"

	// The API reports an invalid or revoked key as a missing entity
	// rather than a structured auth error.
	expiredKeyMarker = "Requested entity was not found"
)

const upscalePromptFormat = "Upscale this image to ultra-high 4K resolution, " +
	"enhancing fine details and textures while maintaining the original composition: %s"

type Provider struct {
	client     *genai.Client
	flashModel string
	proModel   string
	log        *zap.Logger
}

func New(ctx context.Context, cfg *provider.Config, log *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrAPIKeyRequired
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	p := &Provider{
		client:     client,
		flashModel: cfg.FlashModel,
		proModel:   cfg.ProModel,
		log:        log,
	}
	if p.flashModel == "" {
		p.flashModel = defaultFlashModel
	}
	if p.proModel == "" {
		p.proModel = defaultProModel
	}
	return p, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req *provider.GenerateRequest) (payload.Payload, error) {
	model := p.modelFor(req.Resolution)
	p.log.Debug("generate request",
		zap.String("model", model),
		zap.String("resolution", req.Resolution.String()),
		zap.String("aspect_ratio", req.AspectRatio.String()))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(req.Prompt)}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: req.AspectRatio.String(),
			ImageSize:   req.Resolution.String(),
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", classify(err)
	}
	return firstImage(resp)
}

func (p *Provider) Edit(ctx context.Context, img payload.Payload, prompt string) (payload.Payload, error) {
	mimeType, data, err := img.Decode()
	if err != nil {
		return "", err
	}

	p.log.Debug("edit request",
		zap.String("model", p.flashModel),
		zap.Int("image_bytes", len(data)))

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.flashModel, contents, nil)
	if err != nil {
		return "", classify(err)
	}
	return firstImage(resp)
}

func (p *Provider) Upscale(ctx context.Context, img payload.Payload, originalPrompt string) (payload.Payload, error) {
	mimeType, data, err := img.Decode()
	if err != nil {
		return "", err
	}

	p.log.Debug("upscale request",
		zap.String("model", p.proModel),
		zap.Int("image_bytes", len(data)))

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		genai.NewPartFromText(upscalePrompt(originalPrompt)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			ImageSize: state.Resolution4K.String(),
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.proModel, contents, config)
	if err != nil {
		return "", classify(err)
	}
	return firstImage(resp)
}

// modelFor picks the model tier for a generation: 1K runs on the flash
// model, 2K and 4K need the pro model.
func (p *Provider) modelFor(res state.Resolution) string {
	if res == state.Resolution1K {
		return p.flashModel
	}
	return p.proModel
}

func upscalePrompt(originalPrompt string) string {
	return fmt.Sprintf(upscalePromptFormat, originalPrompt)
}

// classify re-tags an expired-key failure; anything else propagates
// with its original message.
func classify(err error) error {
	if strings.Contains(err.Error(), expiredKeyMarker) {
		return fmt.Errorf("%w: %v", provider.ErrCredentialExpired, err)
	}
	return err
}

// firstImage extracts the first inline-image part of the response.
func firstImage(resp *genai.GenerateContentResponse) (payload.Payload, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", provider.ErrNoImage
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return payload.Encode(part.InlineData.Data, part.InlineData.MIMEType), nil
		}
	}
	return "", provider.ErrNoImage
}
