package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/fs"
	"github.com/yzsnstotz/tlvc/preprocess"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Profiles     *fs.ProfileLoader
	Preprocessor *preprocess.Preprocessor

	// NewStore returns the artifact store of an episode output directory.
	NewStore func(dir string) tlvc.ArtifactStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel    string `help:"Log level" default:"info" enum:"debug,info,warn,error" env:"TLVC_LOG_LEVEL"`
	LogFormat   string `help:"Log format (auto picks text on a terminal)" default:"auto" enum:"auto,text,json" env:"TLVC_LOG_FORMAT"`
	ProfilesDir string `help:"Directory of extraction profiles" default:"profiles/extractors" env:"TLVC_PROFILES_DIR"`

	Preprocess PreprocessCmd `cmd:"" help:"Preprocess one exported transcript"`
	Doctor     DoctorCmd     `cmd:"" help:"Check input and profile without writing artifacts"`
	Batch      BatchCmd      `cmd:"" help:"Preprocess every episode directory of an inbox"`
	Profile    ProfileCmd    `cmd:"" help:"Extraction profile tools"`
	Schema     SchemaCmd     `cmd:"" help:"Print the JSON schema of the profile format"`
}

// RunFlags are the pipeline settings shared by commands that run it.
type RunFlags struct {
	K       int    `short:"k" default:"3" env:"TLVC_K" help:"Number of segments to keep"`
	TZ      string `name:"tz" default:"Asia/Tokyo" env:"TLVC_TZ" help:"IANA timezone for timestamps without an offset"`
	Profile string `env:"TLVC_PROFILE" help:"Profile path or bare name (default: the profiles index)"`
}

// PreprocessCmd is the "preprocess" subcommand.
type PreprocessCmd struct {
	Input        string `arg:"" help:"Export directory or HTML file"`
	Ep           string `name:"ep" required:"" help:"Episode id"`
	Out          string `required:"" help:"Episode output directory"`
	RecordSource bool   `help:"Record input paths in the transcript meta"`
	RunFlags     `embed:""`
}

// DoctorCmd is the "doctor" subcommand.
type DoctorCmd struct {
	Input   string `arg:"" help:"Export directory or HTML file"`
	Ep      string `name:"ep" help:"Episode id"`
	TZ      string `name:"tz" default:"Asia/Tokyo" env:"TLVC_TZ" help:"IANA timezone for timestamps without an offset"`
	Profile string `env:"TLVC_PROFILE" help:"Profile path or bare name (default: the profiles index)"`
	JSON    bool   `help:"Print the report as JSON"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Inbox       string `arg:"" help:"Directory containing ep_NNNN episode directories"`
	Out         string `required:"" help:"Output root; each episode writes to <out>/<ep>"`
	Concurrency int    `short:"c" default:"4" help:"Episodes processed concurrently"`
	RunFlags    `embed:""`
}

// ProfileCmd groups the profile subcommands.
type ProfileCmd struct {
	Validate ProfileValidateCmd `cmd:"" help:"Strictly validate an extraction profile"`
}

// ProfileValidateCmd is the "profile validate" subcommand.
type ProfileValidateCmd struct {
	Profile string `arg:"" help:"Profile path or bare name"`
}

// SchemaCmd is the "schema" subcommand.
type SchemaCmd struct{}
