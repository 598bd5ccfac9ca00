package mock

import "github.com/yzsnstotz/tlvc"

var _ tlvc.ProfileLoader = (*ProfileLoader)(nil)

// ProfileLoader is a mock implementation of tlvc.ProfileLoader.
type ProfileLoader struct {
	LoadProfileFn func(path string) (*tlvc.Profile, error)
}

func (l *ProfileLoader) LoadProfile(path string) (*tlvc.Profile, error) {
	return l.LoadProfileFn(path)
}
