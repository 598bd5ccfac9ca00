package main

import (
	"fmt"

	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/goquery"
)

// Run executes the profile validate command. Findings exit with code 2.
func (c *ProfileValidateCmd) Run(deps *Dependencies) error {
	path := deps.Profiles.ResolveProfilePath(c.Profile)

	var check *tlvc.ProfileCheck
	p, err := deps.Profiles.LoadProfile(path)
	switch {
	case tlvc.ErrorCode(err) == tlvc.EINVALID:
		check = &tlvc.ProfileCheck{Errors: []string{tlvc.ErrorMessage(err)}}
	case err != nil:
		fmt.Fprintf(deps.Stderr, "error: %s\n", tlvc.ErrorMessage(err))
		return err
	default:
		check = tlvc.CheckProfile(p)
		check.Errors = append(check.Errors, goquery.CheckSelectors(p)...)
	}

	for _, e := range check.Errors {
		fmt.Fprintf(deps.Stdout, "error   %s\n", e)
	}
	for _, w := range check.Warnings {
		fmt.Fprintf(deps.Stdout, "warning %s\n", w)
	}
	if !check.OK() {
		fmt.Fprintf(deps.Stdout, "%s: invalid\n", path)
		return &exitError{code: 2}
	}
	fmt.Fprintf(deps.Stdout, "%s: ok\n", path)
	return nil
}
