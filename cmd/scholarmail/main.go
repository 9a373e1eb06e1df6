package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/gemini"
	"github.com/fwojciec/scholarmail/goquery"
	"github.com/fwojciec/scholarmail/htmltomarkdown"
	"github.com/fwojciec/scholarmail/mongo"
	"github.com/fwojciec/scholarmail/ollama"
	"github.com/fwojciec/scholarmail/parse"
	smprom "github.com/fwojciec/scholarmail/prometheus"
	smslog "github.com/fwojciec/scholarmail/slog"
	"github.com/fwojciec/scholarmail/sqlite"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database handles opened by Run.
	SQLite *sqlite.DB
	Mongo  *mongo.DB

	// Store and Extractor replace the configured backends when set.
	Store     scholarmail.Store
	Extractor scholarmail.Extractor
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.SQLite != nil {
		errs = append(errs, m.SQLite.Close())
	}
	if m.Mongo != nil {
		errs = append(errs, m.Mongo.Close(context.Background()))
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scholarmail"),
		kong.Description("Extract citation records from Google Scholar alert emails."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'scholarmail --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.LogLevel)

	store, err := m.openStore(ctx, cli, stderr)
	if err != nil {
		return err
	}
	defer m.Close()
	deps.Store = smslog.NewLoggingStore(store, deps.Logger)

	var flags *ExtractFlags
	switch cmd {
	case "run":
		flags = &cli.Run.ExtractFlags
	case "watch":
		flags = &cli.Watch.ExtractFlags
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = smprom.NewMetrics(reg)
		deps.Gatherer = reg
	}

	if flags != nil {
		extractor, err := m.buildExtractor(ctx, flags, stderr)
		if err != nil {
			return err
		}
		extractor = smslog.NewLoggingExtractor(extractor, deps.Logger)
		if deps.Metrics != nil {
			extractor = deps.Metrics.Extractor(extractor)
		}
		deps.Parser = newParser(deps.Store, extractor, flags, deps.Logger)
	} else {
		deps.Parser = &parse.Parser{Store: deps.Store, Logger: deps.Logger}
	}

	return kongCtx.Run(deps)
}

func (m *Main) openStore(ctx context.Context, cli *CLI, stderr io.Writer) (scholarmail.Store, error) {
	if m.Store != nil {
		return m.Store, nil
	}

	switch cli.Store {
	case "mongo":
		m.Mongo = mongo.NewDB(cli.MongoURI, cli.MongoDatabase)
		if err := m.Mongo.Open(ctx); err != nil {
			m.Mongo = nil
			fmt.Fprintln(stderr, "Hint: Set SCHOLARMAIL_MONGO_URI to point at a running MongoDB server")
			return nil, fmt.Errorf("failed to open mongo database %q: %w", cli.MongoDatabase, err)
		}
		return mongo.NewStore(m.Mongo), nil
	default:
		path := cli.DB
		if path == "" {
			path = defaultDBPath()
		}
		m.SQLite = sqlite.NewDB(path)
		if err := m.SQLite.Open(); err != nil {
			m.SQLite = nil
			fmt.Fprintln(stderr, "Hint: Set SCHOLARMAIL_DB to use a different database path")
			return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		return sqlite.NewStore(m.SQLite), nil
	}
}

func (m *Main) buildExtractor(ctx context.Context, flags *ExtractFlags, stderr io.Writer) (scholarmail.Extractor, error) {
	if m.Extractor != nil {
		return m.Extractor, nil
	}

	var conv scholarmail.Converter
	if flags.Markdown {
		conv = htmltomarkdown.NewConverter()
	}

	switch flags.Backend {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		var opts []gemini.Option
		if conv != nil {
			opts = append(opts, gemini.WithConverter(conv))
		}
		return gemini.NewExtractor(client, opts...), nil
	case "goquery":
		return goquery.NewExtractor(), nil
	default:
		var opts []ollama.Option
		if conv != nil {
			opts = append(opts, ollama.WithConverter(conv))
		}
		return ollama.NewExtractor(opts...), nil
	}
}

func newParser(store scholarmail.Store, extractor scholarmail.Extractor, flags *ExtractFlags, logger *slog.Logger) *parse.Parser {
	p := &parse.Parser{
		Store:       store,
		Extractor:   extractor,
		Validator:   goquery.NewValidator(),
		Classifier:  parse.NewHostClassifier(),
		Config:      flags.Config(),
		Concurrency: flags.Concurrency,
		Logger:      logger,
	}
	if flags.RPS > 0 {
		p.Limiter = rate.NewLimiter(rate.Limit(flags.RPS), 1)
	}
	return p
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "scholarmail.db"
	}
	dir := filepath.Join(home, ".scholarmail")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "scholarmail.db")
}
