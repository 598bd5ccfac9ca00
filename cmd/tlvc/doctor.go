package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/preprocess"
)

// Run executes the doctor command.
func (c *DoctorCmd) Run(deps *Dependencies) error {
	report, err := deps.Preprocessor.Doctor(preprocess.Options{
		Input:       c.Input,
		EpisodeID:   c.Ep,
		Timezone:    c.TZ,
		ProfilePath: deps.Profiles.ResolveProfilePath(c.Profile),
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tlvc.ErrorMessage(err))
		return err
	}

	if c.JSON {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, string(b))
		return nil
	}

	fmt.Fprintln(deps.Stdout, renderTable([]string{"Check", "Value"}, doctorRows(report)))
	return nil
}

func doctorRows(r *preprocess.DoctorReport) [][]string {
	itoa := strconv.Itoa
	rows := [][]string{
		{"input", r.Input.InputPath},
		{"html", r.Input.HTMLPath},
		{"format", string(r.Format)},
		{"fingerprint", r.Fingerprint},
		{"profile", fmt.Sprintf("%s (v%d)", r.ProfileName, r.ProfileVersion)},
		{"containers", itoa(r.Extraction.ContainerMatches)},
		{"dropped", itoa(r.Extraction.Dropped)},
		{"messages", itoa(r.TotalMessages)},
		{"sample", itoa(r.Sample.Size)},
		{"sample timestamp missing", itoa(r.Sample.MissingTS)},
		{"sample sender unknown", itoa(r.Sample.UnknownSender)},
		{"sample empty text", itoa(r.Sample.EmptyText)},
		{"triggers error", itoa(r.Triggers.Error)},
		{"triggers permission", itoa(r.Triggers.Permission)},
		{"triggers action", itoa(r.Triggers.Action)},
		{"mode", string(r.Mode)},
	}
	if r.Extraction.Degraded {
		rows = append(rows, []string{"degraded", "no container matched"})
	}
	if assets := assetDirs(r.Input.Assets); assets != "" {
		rows = append(rows, []string{"assets", assets})
	}
	hits := r.Extraction.RuleHits
	for _, f := range []struct {
		name string
		hits []int
	}{
		{"sender", hits.Sender},
		{"timestamp", hits.Timestamp},
		{"text", hits.Text},
		{"reply_to", hits.ReplyTo},
	} {
		if len(f.hits) > 0 {
			rows = append(rows, []string{"rule hits " + f.name, joinInts(f.hits)})
		}
	}
	return rows
}

func assetDirs(a tlvc.Assets) string {
	var dirs []string
	for _, d := range []string{a.PhotosDir, a.ImagesDir, a.CSSDir, a.JSDir} {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return strings.Join(dirs, ", ")
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, " ")
}
