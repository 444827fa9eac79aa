package ports

import "context"

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	// Confirm returns true when the user approves the prompt.
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts an ordinary function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f(ctx, prompt).
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt. Suitable for headless callers that
// already expressed intent (e.g. an explicit --yes flag).
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// NeverConfirm refuses every prompt.
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, nil
})

type approvalKey struct{}

// WithApproval returns a context carrying a pre-made answer for ContextConfirmer.
func WithApproval(ctx context.Context, approved bool) context.Context {
	return context.WithValue(ctx, approvalKey{}, approved)
}

// ContextConfirmer answers with the approval stored by WithApproval and
// refuses when the context carries none. Request/response transports use it
// to turn an explicit request flag into a confirmation.
var ContextConfirmer Confirmer = ConfirmFunc(func(ctx context.Context, _ string) (bool, error) {
	approved, _ := ctx.Value(approvalKey{}).(bool)
	return approved, nil
})
