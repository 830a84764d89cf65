package provider

import (
	"context"
	"errors"

	"github.com/spaceai/spaceai/internal/payload"
	"github.com/spaceai/spaceai/internal/state"
)

var (
	// ErrCredentialExpired means the remote model rejected the
	// configured key. Classified once at the adapter boundary so
	// callers never sniff provider messages.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrNoImage means the model responded without usable image data.
	ErrNoImage = errors.New("no image data returned from model")

	ErrAPIKeyRequired = errors.New("API key is required")
)

// GenerateRequest holds the parameters for a text-to-image call.
// Resolution and aspect ratio apply to generation only; edits ignore
// both and upscales force the highest resolution tier.
type GenerateRequest struct {
	Prompt      string
	Resolution  state.Resolution
	AspectRatio state.AspectRatio
}

// Provider is the image service adapter: three mutually exclusive
// remote operations, each returning a single displayable payload.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *GenerateRequest) (payload.Payload, error)
	Edit(ctx context.Context, img payload.Payload, prompt string) (payload.Payload, error)
	Upscale(ctx context.Context, img payload.Payload, originalPrompt string) (payload.Payload, error)
}

// Config carries provider construction options.
type Config struct {
	APIKey string

	// FlashModel and ProModel override the default model names.
	FlashModel string
	ProModel   string
}
