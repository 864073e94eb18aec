package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/database"
	"github.com/palemoky/contentiq/internal/estimator"
	"github.com/palemoky/contentiq/internal/helpers"
	"github.com/palemoky/contentiq/internal/logger"
)

type estimateOptions struct {
	delay  time.Duration
	asJSON bool
}

func newEstimateCmd() *cobra.Command {
	opts := estimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate <url>...",
		Short: "Estimate the AI training value of one or more websites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}

	cmd.Flags().DurationVarP(&opts.delay, "delay", "d", 2*time.Second, "Simulated analysis time per URL")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	return cmd
}

func runEstimate(ctx context.Context, out, progressOut io.Writer, urls []string, opts estimateOptions) error {
	// a private in-memory store per invocation
	db, err := database.Open("file::memory:", 1, 1)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		return err
	}

	est, err := estimator.New(len(urls))
	if err != nil {
		return err
	}

	svc := analysis.NewService(database.NewRepository(db), est, analysis.Options{
		Delay: opts.delay,
		TTL:   time.Hour,
	}, logger.Named("estimate"))
	defer svc.Close()

	results := make([]*database.Analysis, 0, len(urls))
	for _, url := range urls {
		a, err := analyzeWithProgress(ctx, progressOut, svc, url, opts)
		if err != nil {
			return fmt.Errorf("%q: %w", url, err)
		}
		if a.State != database.StateComplete {
			return fmt.Errorf("%q: analysis did not complete: %s", url, a.Error)
		}
		results = append(results, a)
	}

	if opts.asJSON {
		return writeJSON(out, results)
	}
	return writeTable(out, results)
}

// analyzeWithProgress shows a bar filling over the delay while the
// analysis is busy.
func analyzeWithProgress(ctx context.Context, progressOut io.Writer, svc *analysis.Service, url string, opts estimateOptions) (*database.Analysis, error) {
	a, err := svc.Analyze(ctx, url)
	if err != nil {
		return nil, err
	}

	if opts.asJSON || opts.delay <= 0 {
		return svc.Wait(ctx, a.ID)
	}

	progress := mpb.NewWithContext(ctx,
		mpb.WithOutput(progressOut),
		mpb.WithWidth(40),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	total := max(opts.delay.Milliseconds(), 1)
	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name("正在分析网站内容... ", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
		mpb.BarRemoveOnComplete(),
	)

	waitDone := make(chan struct{})
	var (
		done    *database.Analysis
		waitErr error
	)
	go func() {
		done, waitErr = svc.Wait(ctx, a.ID)
		close(waitDone)
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
loop:
	for {
		select {
		case <-waitDone:
			break loop
		case <-ticker.C:
			elapsed := time.Since(start).Milliseconds()
			if elapsed >= total {
				elapsed = total - 1
			}
			bar.SetCurrent(elapsed)
		}
	}

	// a bar with a positive total completes only by reaching it
	if waitErr != nil {
		bar.Abort(true)
	} else {
		bar.SetCurrent(total)
	}
	progress.Wait()

	if waitErr != nil {
		return nil, waitErr
	}
	logger.With(zap.String("id", done.ID)).Debug("Analysis complete", zap.String("url", url))
	return done, nil
}

func writeJSON(out io.Writer, results []*database.Analysis) error {
	type row struct {
		URL string `json:"url"`
		*estimator.MetricBundle
	}

	rows := make([]row, 0, len(results))
	for _, a := range results {
		rows = append(rows, row{URL: a.URL, MetricBundle: a.Result()})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeTable(out io.Writer, results []*database.Analysis) error {
	table := tablewriter.NewWriter(out)
	table.Header("网站", "页面数量", "总词数", "内容独特性", "内容质量", "估算价值")

	for _, a := range results {
		b := a.Result()
		if err := table.Append(
			a.URL,
			helpers.FormatCount(b.PageCount),
			helpers.FormatCount(b.WordCount),
			helpers.FormatPercent(b.UniqueContentPercent),
			helpers.FormatScore(b.QualityScore),
			helpers.FormatCNY(b.EstimatedValue),
		); err != nil {
			return err
		}
	}

	return table.Render()
}
