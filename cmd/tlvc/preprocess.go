package main

import (
	"fmt"
	"path/filepath"

	"github.com/yzsnstotz/tlvc"
)

// Run executes the preprocess command. Lint failures exit with code 2
// after the artifacts are written.
func (c *PreprocessCmd) Run(deps *Dependencies) error {
	opts := c.options(deps, c.Input, c.Ep)
	opts.RecordSource = c.RecordSource

	result, err := runEpisode(deps.Ctx, deps, opts, c.Out)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tlvc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s: %d messages, %d segments (%s), %d redactions\n",
		c.Ep,
		len(result.Transcript.Messages),
		len(result.TopK.Segments),
		result.TopK.Meta.Mode,
		result.Transcript.Redaction.TotalHits,
	)
	for _, e := range result.Lint.Errors {
		fmt.Fprintf(deps.Stdout, "  error   %s: %s\n", e.Code, e.Message)
	}
	for _, w := range result.Lint.Warnings {
		fmt.Fprintf(deps.Stdout, "  warning %s: %s\n", w.Code, w.Message)
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", filepath.Join(c.Out, tlvc.ArtifactDir))

	if result.ExitCode != tlvc.ExitOK {
		return &exitError{code: result.ExitCode}
	}
	return nil
}
