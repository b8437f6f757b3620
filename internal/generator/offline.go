package generator

import (
	"context"

	"cares/internal/config"
	"cares/internal/model"
)

// Offline returns no text, so reports are fully synthesized from scores
type Offline struct{}

func (Offline) Generate(ctx context.Context, prompt string) (*model.GeneratorOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &model.GeneratorOutput{
		Provider: config.ProviderOffline,
		Raw:      map[string]any{},
	}, nil
}
