package app

import (
	"context"

	apperrors "tradevault/internal/errors"
)

// StreamInsight runs a streaming AI call and delivers the text token by
// token.
//
// This is the one deliberate exception to the full-render-per-mutation
// contract: re-rendering the whole screen on every token would tear down
// the view hundreds of times per response. Instead each chunk takes the
// dual-write path below — appended to the live output via patch AND
// mirrored into State.StreamBuffers[key] — so a later full render (after
// navigation, say) reproduces exactly the text the user watched stream in.
// All streaming call sites go through here; none patch output directly.
func (a *App) StreamInsight(ctx context.Context, key, endpoint string, payload interface{}, patch func(chunk string)) {
	a.State.StreamBuffers[key] = ""

	err := a.backend.Stream(ctx, endpoint, payload, func(chunk string) {
		a.State.StreamBuffers[key] += chunk
		if patch != nil {
			patch(chunk)
		}
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUpgradeRequired) {
			// Premium gate goes to the upsell affordance, not a toast.
			a.State.UpgradePrompt = true
		} else {
			a.Notify(ToastError, "AI request failed: "+err.Error())
		}
	}
	a.Render()
}

// StreamedText returns the mirrored text for a streaming context key.
func (a *App) StreamedText(key string) string {
	return a.State.StreamBuffers[key]
}
