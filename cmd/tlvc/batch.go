package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/yzsnstotz/tlvc"
	"golang.org/x/sync/errgroup"
)

var episodeDirRe = regexp.MustCompile(`^ep_\d{4}$`)

// StagingSuffix marks episode directories that are still being copied in.
const StagingSuffix = ".__staging__"

type episodeOutcome struct {
	ep     string
	result *tlvc.Result
	err    error
}

// Run executes the batch command. Episodes are independent: a fatal error
// in one does not stop the others.
func (c *BatchCmd) Run(deps *Dependencies) error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}

	episodes, err := episodeDirs(c.Inbox)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tlvc.ErrorMessage(err))
		return err
	}
	if len(episodes) == 0 {
		fmt.Fprintf(deps.Stdout, "No episode directories found in %s\n", c.Inbox)
		return nil
	}

	outcomes := make([]episodeOutcome, len(episodes))
	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(c.Concurrency)
	for i, ep := range episodes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := c.options(deps, filepath.Join(c.Inbox, ep), ep)
			result, err := runEpisode(ctx, deps, opts, filepath.Join(c.Out, ep))
			if err != nil {
				deps.Logger.Error("episode failed", "ep", ep, "err", err)
			}
			outcomes[i] = episodeOutcome{ep: ep, result: result, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	code := tlvc.ExitOK
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			code = 1
			rows = append(rows, []string{o.ep, "fatal", "-", "-", tlvc.ErrorMessage(o.err)})
		case !o.result.Lint.OK:
			if code == tlvc.ExitOK {
				code = tlvc.ExitLintFail
			}
			rows = append(rows, []string{o.ep, "lint", strconv.Itoa(len(o.result.Transcript.Messages)), string(o.result.TopK.Meta.Mode), lintCodes(o.result.Lint)})
		default:
			rows = append(rows, []string{o.ep, "ok", strconv.Itoa(len(o.result.Transcript.Messages)), string(o.result.TopK.Meta.Mode), ""})
		}
	}
	fmt.Fprintln(deps.Stdout, renderTable([]string{"Episode", "Status", "Messages", "Mode", "Detail"}, rows, 3))

	if code != tlvc.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

// episodeDirs lists the episode directories of inbox in lexicographic order.
func episodeDirs(inbox string) ([]string, error) {
	entries, err := os.ReadDir(inbox)
	if os.IsNotExist(err) {
		return nil, tlvc.Errorf(tlvc.ENOTFOUND, "inbox not found: %s", inbox)
	} else if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasSuffix(name, StagingSuffix) || !episodeDirRe.MatchString(name) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func lintCodes(r *tlvc.LintReport) string {
	codes := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		codes[i] = e.Code
	}
	return strings.Join(codes, ", ")
}
