package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/parse"
	smprom "github.com/fwojciec/scholarmail/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Store  scholarmail.Store
	Parser *parse.Parser

	// Metrics and Gatherer are set for the watch command only.
	Metrics  *smprom.Metrics
	Gatherer prometheus.Gatherer

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Store         string `enum:"sqlite,mongo" default:"sqlite" env:"SCHOLARMAIL_STORE" help:"Storage backend (sqlite, mongo)"`
	DB            string `env:"SCHOLARMAIL_DB" help:"SQLite database path"`
	MongoURI      string `name:"mongo-uri" default:"mongodb://localhost:27017" env:"SCHOLARMAIL_MONGO_URI" help:"MongoDB connection URI"`
	MongoDatabase string `name:"mongo-database" default:"scholarmail" env:"SCHOLARMAIL_MONGO_DATABASE" help:"MongoDB database name"`
	LogLevel      string `enum:"debug,info,warn,error" default:"info" env:"SCHOLARMAIL_LOG_LEVEL" help:"Log level"`

	Run     RunCmd     `cmd:"" help:"Extract search results from unprocessed emails once"`
	Watch   WatchCmd   `cmd:"" help:"Extract search results on a schedule"`
	Import  ImportCmd  `cmd:"" help:"Store HTML files as unprocessed emails"`
	Show    ShowCmd    `cmd:"" help:"Show a stored search result"`
	Results ResultsCmd `cmd:"" help:"List search results extracted from an email"`
}

// ExtractFlags configure the extraction backend and the pipeline.
type ExtractFlags struct {
	Backend     string        `enum:"ollama,gemini,goquery" default:"ollama" env:"SCHOLARMAIL_BACKEND" help:"Extraction backend (ollama, gemini, goquery)"`
	Model       string        `env:"SCHOLARMAIL_MODEL" help:"Model name; empty uses the backend default"`
	Temperature float32       `default:"0" env:"SCHOLARMAIL_TEMPERATURE" help:"Sampling temperature"`
	Endpoint    string        `env:"SCHOLARMAIL_ENDPOINT" help:"Backend URL; empty uses the backend default"`
	Timeout     time.Duration `default:"5m" env:"SCHOLARMAIL_TIMEOUT" help:"Timeout of a single extraction call"`
	RPS         float64       `name:"rps" default:"0" env:"SCHOLARMAIL_RPS" help:"Maximum extraction calls per second; 0 disables the limit"`
	Concurrency int           `short:"c" default:"1" env:"SCHOLARMAIL_CONCURRENCY" help:"Emails processed at once"`
	Markdown    bool          `env:"SCHOLARMAIL_MARKDOWN" help:"Convert bodies to Markdown before sending them to a model"`
}

// Config returns the extractor configuration for the flags.
func (f ExtractFlags) Config() scholarmail.ExtractorConfig {
	return scholarmail.ExtractorConfig{
		Model:       f.Model,
		Temperature: f.Temperature,
		Format:      scholarmail.FormatJSON,
		Endpoint:    f.Endpoint,
		Timeout:     f.Timeout,
	}
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	ExtractFlags `embed:""`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	ExtractFlags `embed:""`
	Schedule     string `default:"@every 15m" env:"SCHOLARMAIL_SCHEDULE" help:"Cron schedule of pipeline runs"`
	MetricsAddr  string `env:"SCHOLARMAIL_METRICS_ADDR" help:"Address to serve Prometheus metrics on, e.g. :9090"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Files []string `arg:"" type:"existingfile" help:"HTML files holding email bodies"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID     string `arg:"" help:"Search result ID"`
	Format string `short:"f" enum:"yaml,json" default:"yaml" help:"Output format (yaml, json)"`
}

// ResultsCmd is the "results" subcommand.
type ResultsCmd struct {
	EmailID string `arg:"" help:"Email ID"`
	Format  string `short:"f" enum:"text,yaml,json" default:"text" help:"Output format (text, yaml, json)"`
}
