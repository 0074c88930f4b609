package ollama

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// VettedVisionModels is the explicit allow-list of vision models, in
// preference order. Only a listed model may ever be substituted when the
// requested one is unavailable; an unlisted model is never run.
var VettedVisionModels = []string{
	"qwen3-vl:8b",         // primary, best JSON output
	"qwen2-vl:7b",         // good alternative
	"llava:13b",           // reliable, detailed
	"llava:7b",            // faster, less detailed
	"llava:34b",           // largest LLaVA
	"llama3.2-vision:11b", // Meta model
	"minicpm-v:8b",        // efficient
}

// DefaultVisionModel is the first entry of the vetted list.
func DefaultVisionModel() string { return VettedVisionModels[0] }

// EnsureEmbedModel verifies the service is reachable and the embedding
// model is installed, accepting either the bare name or its :latest tag.
// The returned error carries the install command; there is no fallback for
// embeddings because switching models would silently change the vector
// space of the whole index.
func (c *Client) EnsureEmbedModel(ctx context.Context, model string) error {
	installed, err := c.InstalledModels(ctx)
	if err != nil {
		return err
	}
	for _, name := range installed {
		if name == model || name == model+":latest" {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (install with: ollama pull %s)", ErrModelMissing, model, model)
}

// ResolveVisionModel picks the vision model to run. The requested model
// must be on the vetted list; an unlisted request is replaced by the
// default with a warning, never run. If the chosen model is not installed,
// the highest-preference installed vetted model is substituted, and the
// substitution is logged. With no vetted model installed at all the probe
// fails with an install instruction.
func (c *Client) ResolveVisionModel(ctx context.Context, requested string) (string, error) {
	model := requested
	if model == "" {
		model = DefaultVisionModel()
	}
	if !vetted(model) {
		c.log.Warn("requested vision model is not on the vetted list, using default",
			zap.String("requested", model),
			zap.String("default", DefaultVisionModel()),
			zap.Strings("vetted", VettedVisionModels))
		model = DefaultVisionModel()
	}

	installed, err := c.InstalledModels(ctx)
	if err != nil {
		return "", err
	}
	installedSet := make(map[string]struct{}, len(installed))
	for _, name := range installed {
		installedSet[name] = struct{}{}
	}

	if _, ok := installedSet[model]; ok {
		return model, nil
	}
	for _, alt := range VettedVisionModels {
		if _, ok := installedSet[alt]; ok {
			c.log.Warn("vision model not installed, substituting vetted alternative",
				zap.String("requested", model),
				zap.String("using", alt))
			return alt, nil
		}
	}
	return "", fmt.Errorf("%w: no vetted vision model installed (install with: ollama pull %s)",
		ErrModelMissing, DefaultVisionModel())
}

func vetted(model string) bool {
	for _, name := range VettedVisionModels {
		if name == model {
			return true
		}
	}
	return false
}
