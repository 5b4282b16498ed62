// Package content declares the text-generation and translation
// collaborators. The AI backend itself lives outside this module; the
// fan-out engine and the authoring front end consume these interfaces
// and never see which model (if any) sits behind them.
package content

import "context"

// Generator produces category content for the notification fan-out.
type Generator interface {
	Motivation(ctx context.Context) (string, error)
	ProjectIdea(ctx context.Context) (string, error)
	// Generate answers a free-form prompt (authoring helpers).
	Generate(ctx context.Context, prompt string) (string, error)
}

// Translator converts post content between the primary and secondary
// languages. Implementations return the input unchanged on failure.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Fallback texts used when generation fails. The broadcast still goes
// out; it just isn't fresh.
const (
	FallbackMotivation  = "Every project makes you better. Keep creating! 🚀"
	FallbackProjectIdea = "Model a stylized everyday object in an unexpected style! 🎨"
)

// StaticGenerator serves the fallback texts without any backend. Used
// when no AI collaborator is configured and in tests.
type StaticGenerator struct{}

func (StaticGenerator) Motivation(ctx context.Context) (string, error) {
	return FallbackMotivation, nil
}

func (StaticGenerator) ProjectIdea(ctx context.Context) (string, error) {
	return FallbackProjectIdea, nil
}

func (StaticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return FallbackProjectIdea, nil
}

// NopTranslator passes text through unchanged.
type NopTranslator struct{}

func (NopTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return text, nil
}
