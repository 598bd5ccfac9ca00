package mock

import "github.com/yzsnstotz/tlvc"

var _ tlvc.InputResolver = (*InputResolver)(nil)

// InputResolver is a mock implementation of tlvc.InputResolver.
type InputResolver struct {
	ResolveFn func(path string) (*tlvc.ResolvedInput, error)
}

func (r *InputResolver) Resolve(path string) (*tlvc.ResolvedInput, error) {
	return r.ResolveFn(path)
}
