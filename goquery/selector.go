package goquery

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/yzsnstotz/tlvc"
)

// CheckSelectors compiles every selector of the profile and returns one
// message per selector that cannot be parsed. goquery silently matches
// nothing for an invalid selector, so this is the only place such mistakes
// surface.
func CheckSelectors(p *tlvc.Profile) []string {
	var problems []string
	for _, s := range p.Selectors() {
		if _, err := cascadia.Compile(s.Selector); err != nil {
			problems = append(problems, fmt.Sprintf("%s: invalid selector %q: %v", s.Path, s.Selector, err))
		}
	}
	return problems
}
