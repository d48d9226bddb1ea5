package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	infraBQ "github.com/dvloznov/finance-summary/internal/infra/bigquery"
	"github.com/dvloznov/finance-summary/internal/pipeline"
	"github.com/dvloznov/finance-summary/internal/report"
	"github.com/dvloznov/finance-summary/internal/suggest"
)

func runClean(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	common := addCommonFlags(fs)
	out := fs.String("out", "", "Cleaned CSV destination (local path, gs:// URI, or gs:// prefix ending in /); overrides the configured output")
	archive := fs.String("archive", "", "Also copy a local source file to this gs:// object or prefix ending in /")
	fs.Parse(args)

	a, ctx := setup(common)
	if *out != "" {
		a.cfg.Output = *out
	}
	a.cfg.Output = cleanedURI(a.store, a.cfg.Output, a.cfg.Source)

	res := a.run(ctx)

	if *archive != "" {
		if strings.HasPrefix(a.cfg.Source, "gs://") {
			a.log.Warn().Str("source", a.cfg.Source).Msg("Source is already in GCS, skipping archive")
		} else {
			bucket, object, err := archiveObject(*archive, a.cfg.Source)
			if err != nil {
				a.log.Fatal().Err(err).Msg("Invalid -archive destination")
			}
			if err := a.store.UploadFile(ctx, bucket, object, a.cfg.Source); err != nil {
				a.log.Fatal().Err(err).Str("bucket", bucket).Str("object", object).Msg("Archive upload failed")
			}
			a.log.Info().Str("bucket", bucket).Str("object", object).Msg("Archived source file")
		}
	}

	var buf bytes.Buffer
	if err := pipeline.WriteCleanedCSV(&buf, res.Transactions, res.HasTransactionID); err != nil {
		a.log.Fatal().Err(err).Msg("Failed to write cleaned CSV")
	}

	if strings.HasPrefix(a.cfg.Output, "gs://") {
		if err := a.store.UploadBytes(ctx, a.cfg.Output, buf.Bytes(), "text/csv"); err != nil {
			a.log.Fatal().Err(err).Str("output", a.cfg.Output).Msg("Upload failed")
		}
	} else if err := os.WriteFile(a.cfg.Output, buf.Bytes(), 0o644); err != nil {
		a.log.Fatal().Err(err).Str("output", a.cfg.Output).Msg("Failed to write output file")
	}

	if err := a.printer().Stats(res); err != nil {
		a.log.Fatal().Err(err).Msg("Failed to print stats")
	}
	fmt.Printf("\nCleaned data written to %s\n", a.cfg.Output)
}

func runSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	common := addCommonFlags(fs)
	asJSON := fs.Bool("json", false, "Print the summary as JSON")
	from := fs.String("from", "", "Only include transactions on or after this date (YYYY-MM-DD)")
	to := fs.String("to", "", "Only include transactions on or before this date (YYYY-MM-DD)")
	types := fs.String("types", "", "Comma-separated transaction types to include")
	categories := fs.String("categories", "", "Comma-separated categories to include")
	topMerchants := fs.Int("top-merchants", 0, "Number of merchants to rank; overrides the configured value")
	topCustomers := fs.Int("top-customers", 0, "Number of customers to rank; overrides the configured value")
	fs.Parse(args)

	a, ctx := setup(common)

	filter, err := parseFilter(*from, *to, *types, *categories)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Invalid filter")
	}

	res := a.run(ctx)
	txs := filter.Apply(res.Transactions)

	opts := a.summaryOptions()
	if *topMerchants > 0 {
		opts.TopMerchants = *topMerchants
	}
	if *topCustomers > 0 {
		opts.TopCustomers = *topCustomers
	}
	opts.CountByTransactionID = res.HasTransactionID
	summary := pipeline.Summarize(txs, opts)

	if *asJSON {
		if err := report.WriteJSON(os.Stdout, summary); err != nil {
			a.log.Fatal().Err(err).Msg("Failed to write JSON")
		}
		return
	}

	p := a.printer()
	if err := p.Stats(res); err != nil {
		a.log.Fatal().Err(err).Msg("Failed to print stats")
	}
	if err := p.Summary(summary); err != nil {
		a.log.Fatal().Err(err).Msg("Failed to print summary")
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	common := addCommonFlags(fs)
	ensure := fs.Bool("ensure-tables", false, "Create the dataset and tables if they do not exist")
	upload := fs.String("upload", "", "Also upload the cleaned CSV to this gs:// URI or prefix ending in /")
	verify := fs.Bool("verify", false, "Read the exported group totals back after loading")
	fs.Parse(args)

	a, ctx := setup(common)
	if err := a.cfg.ValidateExport(); err != nil {
		a.log.Fatal().Err(err).Msg("Invalid export configuration")
	}

	res := a.run(ctx)
	opts := a.summaryOptions()
	opts.CountByTransactionID = res.HasTransactionID
	summary := pipeline.Summarize(res.Transactions, opts)

	eo := exportOptions{ensureTables: *ensure, verify: *verify}
	if *upload != "" {
		eo.uploadURI = cleanedURI(a.store, *upload, a.cfg.Source)
	}

	exporter, err := infraBQ.NewExporter(ctx, a.cfg.GCPProject, a.cfg.BQDataset, infraBQ.TableNames{
		Transactions: a.cfg.BQTransactionsTable,
		GroupTotals:  a.cfg.BQSummaryTable,
		Periods:      a.cfg.BQPeriodsTable,
	}, a.opts...)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Failed to create BigQuery exporter")
	}

	if err := a.export(ctx, exporter, res, summary, eo); err != nil {
		a.log.Fatal().Err(err).Str("run_id", res.RunID).Msg("Export failed")
	}

	fmt.Printf("Exported run %s to %s.%s\n", res.RunID, a.cfg.GCPProject, a.cfg.BQDataset)
}

type exportOptions struct {
	ensureTables bool
	uploadURI    string
	verify       bool
}

// export loads one run into repo and optionally uploads the cleaned CSV.
// repo is closed before export returns.
func (a *app) export(ctx context.Context, repo infraBQ.SummaryRepository, res *pipeline.Result, summary *pipeline.Summary, opts exportOptions) error {
	defer repo.Close()

	if opts.ensureTables {
		if err := repo.EnsureTables(ctx); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	now := time.Now().UTC()
	rows := infraBQ.ToTransactionRows(res, now)
	groups, periods := infraBQ.ToSummaryRows(res.RunID, summary, now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return repo.ExportTransactions(gctx, rows)
	})
	g.Go(func() error {
		return repo.ExportSummary(gctx, groups, periods)
	})
	if opts.uploadURI != "" {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := pipeline.WriteCleanedCSV(&buf, res.Transactions, res.HasTransactionID); err != nil {
				return err
			}
			return a.store.UploadBytes(gctx, opts.uploadURI, buf.Bytes(), "text/csv")
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	a.log.Info().
		Str("run_id", res.RunID).
		Int("transactions", len(rows)).
		Int("group_totals", len(groups)).
		Int("periods", len(periods)).
		Str("upload", opts.uploadURI).
		Msg("Export completed")

	if !opts.verify {
		return nil
	}
	stored, err := repo.GroupTotals(ctx, res.RunID)
	if err != nil {
		return fmt.Errorf("export: verification query: %w", err)
	}
	if len(stored) != len(groups) {
		return fmt.Errorf("export: verification found %d group totals, expected %d", len(stored), len(groups))
	}
	a.log.Info().Int("group_totals", len(stored)).Msg("Verification passed")
	return nil
}

func runSuggest(args []string) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	common := addCommonFlags(fs)
	limit := fs.Int("limit", suggest.DefaultLimit, "Maximum number of descriptions to send to the model")
	asJSON := fs.Bool("json", false, "Print suggestions as JSON")
	fs.Parse(args)

	a, ctx := setup(common)
	res := a.run(ctx)

	gen, err := suggest.NewGeminiGenerator(ctx, a.cfg.GeminiModel)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	list, err := suggest.New(gen, a.categories).Suggest(ctx, res.Transactions, *limit)
	if err != nil {
		a.log.Fatal().Err(err).Msg("Suggestion request failed")
	}

	if *asJSON {
		if err := report.WriteJSON(os.Stdout, list); err != nil {
			a.log.Fatal().Err(err).Msg("Failed to write JSON")
		}
		return
	}
	if err := a.printer().Suggestions(list); err != nil {
		a.log.Fatal().Err(err).Msg("Failed to print suggestions")
	}
}
