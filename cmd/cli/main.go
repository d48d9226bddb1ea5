package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/dvloznov/finance-summary/internal/config"
	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/gcsuploader"
	"github.com/dvloznov/finance-summary/internal/logger"
	"github.com/dvloznov/finance-summary/internal/pipeline"
	"github.com/dvloznov/finance-summary/internal/report"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "clean":
		runClean(args)
	case "summary":
		runSummary(args)
	case "export":
		runExport(args)
	case "suggest":
		runSuggest(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Summary CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  finsum <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  clean     Normalize and classify a transaction CSV and write the cleaned file")
	fmt.Println("  summary   Print totals, trends and rankings for a transaction CSV")
	fmt.Println("  export    Load transactions and summary tables into BigQuery")
	fmt.Println("  suggest   Ask Gemini for keywords covering unclassified descriptions")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nEvery command accepts -config PATH and -source PATH|gs://bucket/object.")
	fmt.Println("Settings can also be given as FINSUM_* environment variables or in a .env file.")
	fmt.Println("\nRun 'finsum <command> -h' for more information on a command.")
}

// app is the state shared by every command.
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	opts       []option.ClientOption
	store      gcsuploader.StorageService
	categories *taxonomy.Taxonomy
	engine     *pipeline.Engine
}

// commonFlags registers the flags every command understands.
type commonFlags struct {
	configPath *string
	source     *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", "", "Path to a YAML config file"),
		source:     fs.String("source", "", "Input CSV (local path or gs:// URI); overrides the configured source"),
	}
}

// setup loads configuration and builds the engine. It exits on failure.
func setup(flags commonFlags) (*app, context.Context) {
	config.LoadDotEnv()

	cfg, err := config.Load(*flags.configPath)
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *flags.source != "" {
		cfg.Source = *flags.source
	}

	log := logger.NewFromConfig(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	categories := taxonomy.Default()
	if cfg.TaxonomyFile != "" {
		if categories, err = taxonomy.Load(cfg.TaxonomyFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.TaxonomyFile).Msg("Failed to load taxonomy")
		}
	}
	merchants := taxonomy.DefaultMerchants()
	if cfg.MerchantsFile != "" {
		if merchants, err = taxonomy.Load(cfg.MerchantsFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.MerchantsFile).Msg("Failed to load merchant aliases")
		}
	}

	store := gcsuploader.NewGCSStorageService(opts...)
	a := &app{
		cfg:        cfg,
		log:        log,
		opts:       opts,
		store:      store,
		categories: categories,
		engine:     pipeline.NewEngine(categories, merchants, store, cfg.DateLayouts...),
	}
	return a, logger.WithContext(context.Background(), log)
}

// run executes the engine on the configured source.
func (a *app) run(ctx context.Context) *pipeline.Result {
	res, err := a.engine.Run(ctx, a.cfg.Source)
	if err != nil {
		a.fail(err, "Pipeline failed")
	}
	return res
}

func (a *app) fail(err error, msg string) {
	event := a.log.Fatal().Err(err)
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		event = event.Str("reason", "source not found")
	case errors.Is(err, domain.ErrSchema):
		event = event.Str("reason", "missing required columns")
	}
	event.Msg(msg)
}

func (a *app) summaryOptions() pipeline.SummaryOptions {
	return pipeline.SummaryOptions{
		TopMerchants: a.cfg.TopMerchants,
		TopCustomers: a.cfg.TopCustomers,
		Sign:         pipeline.SignConvention(a.cfg.SignConvention),
	}
}

func (a *app) printer() *report.Printer {
	return report.NewPrinter(os.Stdout, report.NewFormatter(a.cfg.CurrencySymbol, language.Make(a.cfg.Locale)))
}

// parseFilter builds a Filter from the -from, -to, -types and -categories flags.
func parseFilter(from, to, types, categories string) (pipeline.Filter, error) {
	var f pipeline.Filter
	if from != "" {
		d, err := civil.ParseDate(from)
		if err != nil {
			return f, fmt.Errorf("invalid -from %q: %w", from, err)
		}
		f.From = &d
	}
	if to != "" {
		d, err := civil.ParseDate(to)
		if err != nil {
			return f, fmt.Errorf("invalid -to %q: %w", to, err)
		}
		f.To = &d
	}
	for _, s := range splitList(types) {
		t, ok := domain.ParseTxType(s)
		if !ok {
			return f, fmt.Errorf("invalid transaction type %q", s)
		}
		f.Types = append(f.Types, t)
	}
	f.Categories = splitList(categories)
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
