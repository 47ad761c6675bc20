package llm

import "context"

// Fallback tries primary first; if it returns an error, tries secondary.
// Use when the primary provider (e.g. a local Ollama) may be down but a hosted one is configured.
type Fallback struct {
	Primary   Client
	Secondary Client
}

// Complete calls Primary.Complete; on any error other than ctx ending, calls Secondary.Complete.
func (f *Fallback) Complete(ctx context.Context, req Request) (string, error) {
	s, err := f.Primary.Complete(ctx, req)
	if err != nil && f.Secondary != nil && ctx.Err() == nil {
		return f.Secondary.Complete(ctx, req)
	}
	return s, err
}
