package preprocess

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/yzsnstotz/tlvc"
)

// DoctorSampleSize is the number of leading messages checked for quality.
const DoctorSampleSize = 20

// SampleStats counts quality problems in the first messages.
type SampleStats struct {
	Size          int `json:"size"`
	MissingTS     int `json:"missingTimestamp"`
	UnknownSender int `json:"unknownSender"`
	EmptyText     int `json:"emptyText"`
}

// TriggerStats counts trigger hits per category over all messages.
type TriggerStats struct {
	Error      int `json:"error"`
	Permission int `json:"permission"`
	Action     int `json:"action"`
}

// DoctorReport describes what a run would see without producing artifacts.
type DoctorReport struct {
	EpisodeID      string               `json:"episodeId"`
	Input          *tlvc.ResolvedInput  `json:"input"`
	Format         tlvc.ExportFormat    `json:"format"`
	Fingerprint    string               `json:"fingerprint"`
	ProfilePath    string               `json:"profilePath"`
	ProfileName    string               `json:"profileName"`
	ProfileVersion int                  `json:"profileVersion"`
	TotalMessages  int                  `json:"totalMessages"`
	Sample         SampleStats          `json:"sample"`
	Triggers       TriggerStats         `json:"triggers"`
	Mode           tlvc.SegmentMode     `json:"mode"`
	Extraction     tlvc.ExtractionStats `json:"extraction"`
}

// Doctor inspects the input and profile and reports extraction quality,
// trigger counts, and the segmentation mode a run would use. Only missing
// input, a missing HTML document, or an invalid profile or timezone are
// errors.
func (p *Preprocessor) Doctor(opts Options) (*DoctorReport, error) {
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}

	in, profile, doc, err := p.load(opts)
	if err != nil {
		return nil, err
	}

	ext, err := p.Extractor.Extract(doc, profile, loc)
	if err != nil {
		return nil, fmt.Errorf("extract messages: %w", err)
	}
	messages := tlvc.BuildMessages(ext.Messages)

	r := &DoctorReport{
		EpisodeID:      opts.EpisodeID,
		Input:          in,
		Format:         tlvc.FormatUnknown,
		Fingerprint:    fmt.Sprintf("%016x", xxhash.Sum64String(doc)),
		ProfilePath:    opts.ProfilePath,
		ProfileName:    profile.Name(opts.ProfilePath),
		ProfileVersion: profile.Version(),
		TotalMessages:  len(messages),
		Extraction:     ext.Stats,
	}
	if p.Detector != nil {
		r.Format = p.Detector.Detect(doc)
	}

	sample := messages[:min(len(messages), DoctorSampleSize)]
	r.Sample.Size = len(sample)
	for _, m := range sample {
		if strings.TrimSpace(m.RawTimestampText) == "" {
			r.Sample.MissingTS++
		}
		if m.Sender == tlvc.SenderUnknown {
			r.Sample.UnknownSender++
		}
		if strings.TrimSpace(m.Text) == "" {
			r.Sample.EmptyText++
		}
	}

	for _, m := range messages {
		for _, t := range tlvc.MatchTriggers(m.Text) {
			switch t.Category {
			case tlvc.CategoryError:
				r.Triggers.Error++
			case tlvc.CategoryPermission:
				r.Triggers.Permission++
			case tlvc.CategoryAction:
				r.Triggers.Action++
			}
		}
	}

	r.Mode = tlvc.ModeError
	if r.Triggers.Error == 0 {
		r.Mode = tlvc.ModeFallback
	}
	return r, nil
}
