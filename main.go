// Command screener finds long-lived index companies in a sharp short-term
// decline and backtests the mean-reversion strategy those screens feed:
// buy the worst recent decliner, sell when it recovers to its pre-dip
// price.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meanrev/screener/backtest"
	"github.com/meanrev/screener/config"
	"github.com/meanrev/screener/metadata"
	"github.com/meanrev/screener/models"
	"github.com/meanrev/screener/scraper"
	"github.com/meanrev/screener/screener"
	"github.com/meanrev/screener/stocks"
)

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	switch cmd := os.Args[1]; cmd {
	case "screen":
		err = runScreen(cfg, os.Args[2:])
	case "backtest":
		err = runBacktest(cfg, os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: screener <command> [flags]

Commands:
  screen     rank index constituents by their worst recent decline
  backtest   simulate the buy-the-dip strategy over historical data

Run "screener <command> -h" for the command's flags.`)
}

func runScreen(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("screen", flag.ExitOnError)
	var indices, countries multiFlag
	fs.Var(&indices, "index", "index to screen, repeatable: SP500, DAX, FTSE100 (default all)")
	fs.Var(&countries, "country", "country filter, repeatable (default all)")
	minAge := fs.Int("min-age", cfg.MinAgeYears, "minimum company age in years")
	metadataPath := fs.String("metadata", cfg.MetadataCSV, "company metadata CSV")
	output := fs.String("output", "", "output JSON path (default under the output dir)")
	lookback := fs.Int("lookback-days", cfg.LookbackDays, "days of history to analyze")
	window := fs.Int("window", cfg.WindowLen, "performance window length in trading days")
	verbose := fs.Bool("verbose", cfg.Verbose, "print the full ranking instead of the top 10")
	fs.Parse(args)

	pipeline, err := newPipeline(cfg, *metadataPath)
	if err != nil {
		return err
	}
	selected, err := resolveIndices(indices)
	if err != nil {
		return err
	}

	out, err := pipeline.Screen(screener.ScreenOptions{
		Indices:      selected,
		MinAge:       *minAge,
		Countries:    countries,
		LookbackDays: *lookback,
		WindowLen:    *window,
	})
	if err != nil {
		return err
	}

	if err := cfg.EnsureOutputDir(); err != nil {
		return err
	}
	path := outputPath(*output, cfg.OutputDir, "screening_results")
	if err := screener.NewReport(out).Save(path); err != nil {
		return fmt.Errorf("save screening report: %v", err)
	}

	limit := 10
	if *verbose {
		limit = 0
	}
	fmt.Println()
	screener.PrintTable(os.Stdout, out, limit)
	if n := len(out.Warnings); n > 0 {
		fmt.Printf("\n%d warnings, see the report file for details\n", n)
	}
	fmt.Printf("\nResults saved to: %s\n", path)
	return nil
}

func runBacktest(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	var indices, countries multiFlag
	fs.Var(&indices, "index", "index to backtest, repeatable: SP500, DAX, FTSE100 (default all)")
	fs.Var(&countries, "country", "country filter, repeatable (default all)")
	minAge := fs.Int("min-age", cfg.MinAgeYears, "minimum company age in years")
	metadataPath := fs.String("metadata", cfg.MetadataCSV, "company metadata CSV")
	output := fs.String("output", "", "output JSON path (default under the output dir)")
	years := fs.Int("lookback-years", 5, "years to backtest")
	investment := fs.Float64("investment", 50, "investment per trade in $")
	frequency := fs.Int("frequency-days", 7, "days between screening runs")
	window := fs.Int("window", cfg.WindowLen, "performance window length in trading days")
	screenLookback := fs.Int("screen-lookback-days", cfg.ScreenLookbackDays, "days each simulated screening looks back")
	html := fs.Bool("html", false, "also write an HTML report next to the JSON")
	verbose := fs.Bool("verbose", cfg.Verbose, "debug logging")
	fs.Parse(args)

	pipeline, err := newPipeline(cfg, *metadataPath)
	if err != nil {
		return err
	}
	selected, err := resolveIndices(indices)
	if err != nil {
		return err
	}

	end := models.Day(time.Now().UTC())
	start := end.AddDate(0, 0, -*years*365)

	// Fetch a little extra history so the first screening of the run has
	// a full lookback behind it.
	universe, err := pipeline.Universe(screener.UniverseOptions{
		Indices:   selected,
		MinAge:    *minAge,
		Countries: countries,
		From:      start.AddDate(0, 0, -30),
		To:        end,
		Year:      end.Year(),
	})
	if err != nil {
		return err
	}

	engineCfg := backtest.Config{
		Start:         start,
		End:           end,
		WindowLen:     *window,
		FrequencyDays: *frequency,
		LookbackDays:  *screenLookback,
		Investment:    *investment,
		Debug:         *verbose,
	}
	engine, err := backtest.New(engineCfg, universe.Candidates, universe.Prices)
	if err != nil {
		return err
	}
	result, err := engine.Run()
	if err != nil {
		return err
	}
	result.Warnings = append(universe.Warnings, result.Warnings...)

	if err := cfg.EnsureOutputDir(); err != nil {
		return err
	}
	path := outputPath(*output, cfg.OutputDir, "backtest_results")
	report := backtest.NewReport(result, engineCfg, uuid.NewString(), time.Now().UTC())
	if err := report.Save(path); err != nil {
		return fmt.Errorf("save backtest report: %v", err)
	}

	fmt.Println()
	backtest.PrintSummary(os.Stdout, result)
	fmt.Printf("\nDetailed results saved to: %s\n", path)

	if *html {
		htmlPath := strings.TrimSuffix(path, ".json") + ".html"
		if err := report.SaveHTML(htmlPath); err != nil {
			return fmt.Errorf("save HTML report: %v", err)
		}
		fmt.Printf("HTML report saved to: %s\n", htmlPath)
	}
	return nil
}

// newPipeline wires the scraper, the Yahoo client and the metadata store
// together. Metadata row warnings are logged once here; the screening and
// backtest paths both reuse the result.
func newPipeline(cfg *config.Config, metadataPath string) (*screener.Pipeline, error) {
	store, err := metadata.Load(metadataPath)
	if err != nil {
		return nil, err
	}
	for _, w := range store.Warnings() {
		log.Printf("Metadata: %s", w)
	}
	log.Printf("Loaded metadata for %d companies from %s", store.Len(), metadataPath)

	return &screener.Pipeline{
		Source: scraper.New(),
		Market: stocks.NewClient(cfg.StocksOptions()),
		Meta:   store,
	}, nil
}

func resolveIndices(flags multiFlag) ([]string, error) {
	if len(flags) == 0 {
		return []string{models.IndexSP500, models.IndexDAX, models.IndexFTSE100}, nil
	}
	out := make([]string, 0, len(flags))
	for _, raw := range flags {
		index := strings.ToUpper(strings.TrimSpace(raw))
		if !models.ValidIndices[index] {
			return nil, fmt.Errorf("unknown index %q: %w", raw, models.ErrInvalidConfig)
		}
		out = append(out, index)
	}
	return out, nil
}

func outputPath(flagValue, dir, prefix string) string {
	if flagValue != "" {
		return flagValue
	}
	name := fmt.Sprintf("%s_%s.json", prefix, time.Now().Format("20060102_150405"))
	return filepath.Join(dir, name)
}
