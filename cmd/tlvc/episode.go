package main

import (
	"context"
	"fmt"

	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/flock"
	"github.com/yzsnstotz/tlvc/orderedmap"
	"github.com/yzsnstotz/tlvc/preprocess"
)

// runEpisode runs the pipeline for one episode under its output lock and
// publishes the artifacts. Nothing is published when the run fails.
func runEpisode(ctx context.Context, deps *Dependencies, opts preprocess.Options, out string) (*tlvc.Result, error) {
	lock := flock.NewLocker(out)
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	result, err := deps.Preprocessor.Run(opts)
	if err != nil {
		return nil, err
	}

	artifacts, err := orderedmap.Artifacts(result)
	if err != nil {
		return nil, err
	}

	store := deps.NewStore(out)
	for _, a := range artifacts {
		if err := store.Save(ctx, a); err != nil {
			_ = store.Abort()
			return nil, fmt.Errorf("save %s: %w", a.Name, err)
		}
	}
	if err := store.Commit(); err != nil {
		_ = store.Abort()
		return nil, fmt.Errorf("commit artifacts: %w", err)
	}
	return result, nil
}

func (f RunFlags) options(deps *Dependencies, input, ep string) preprocess.Options {
	return preprocess.Options{
		Input:       input,
		EpisodeID:   ep,
		K:           f.K,
		Timezone:    f.TZ,
		ProfilePath: deps.Profiles.ResolveProfilePath(f.Profile),
	}
}
