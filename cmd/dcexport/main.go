// Command dcexport fetches enriched Data Commons observations once and writes
// them as JSON, CSV or GeoJSON.
//
// Usage:
//
//	go run ./cmd/dcexport \
//	  -entities geoId/06,geoId/36 \
//	  -variables Count_Person,Median_Income_Person \
//	  -per-capita Median_Income_Person \
//	  -format csv -delimiter .
//
//	go run ./cmd/dcexport \
//	  -parent country/USA -child-type State \
//	  -variables Count_Person -format geojson -out states.geojson
//
// API root, timeout, facet override and logging come from the same
// environment variables as dcsync (DC_API_ROOT, DC_TIMEOUT, DC_FACET_OVERRIDE,
// LOG_LEVEL, LOG_FORMAT). Without -out, logs go to stderr as text at info level.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/datacommons-client/internal/adapter/datacommons"
	"github.com/couchcryptid/datacommons-client/internal/config"
	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/couchcryptid/datacommons-client/internal/export"
	"github.com/couchcryptid/datacommons-client/internal/observability"
	"github.com/couchcryptid/datacommons-client/internal/pipeline"
)

type options struct {
	entities   string
	parent     string
	childType  string
	variables  string
	perCapita  string
	date       string
	startDate  string
	endDate    string
	series     bool
	grouped    bool
	format     string
	delimiter  string
	geoJSONKey string
	noRewind   bool
	out        string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var o options
	flag.StringVar(&o.entities, "entities", "", "comma-separated entity dcids")
	flag.StringVar(&o.parent, "parent", "", "parent entity dcid for containment queries")
	flag.StringVar(&o.childType, "child-type", "", "child entity type for containment queries")
	flag.StringVar(&o.variables, "variables", "", "comma-separated variable dcids (required)")
	flag.StringVar(&o.perCapita, "per-capita", "", "comma-separated variables to normalize by population")
	flag.StringVar(&o.date, "date", "", "observation date for point queries (default latest)")
	flag.StringVar(&o.startDate, "start", "", "first date to include in series output")
	flag.StringVar(&o.endDate, "end", "", "last date to include in series output")
	flag.BoolVar(&o.series, "series", false, "fetch full time series instead of a single point")
	flag.BoolVar(&o.grouped, "grouped", false, "one record per entity with all variables")
	flag.StringVar(&o.format, "format", "json", "output format: json, csv or geojson")
	flag.StringVar(&o.delimiter, "delimiter", export.DefaultDelimiter, "nested field delimiter for csv and geojson")
	flag.StringVar(&o.geoJSONKey, "geojson-property", export.DefaultGeoJSONProperty, "entity property holding geometry")
	flag.BoolVar(&o.noRewind, "no-rewind", false, "keep geometry ring winding as published")
	flag.StringVar(&o.out, "out", "", "output file (default stdout)")
	flag.Parse()

	if err := o.validate(); err != nil {
		flag.Usage()
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	if o.out == "" {
		// stdout carries the export itself.
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	metrics := observability.NewUnregisteredMetrics()

	source := datacommons.NewClient(cfg.APIRoot, cfg.APITimeout, logger, metrics)
	client := pipeline.NewClient(source, cfg.FacetOverride, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	body, err := o.render(ctx, client)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", o.out, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, body+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("export complete", "format", o.format, "bytes", len(body))
	return nil
}

func (o options) validate() error {
	if o.variables == "" {
		return errors.New("-variables is required")
	}
	if (o.entities == "") == (o.parent == "") {
		return errors.New("exactly one of -entities or -parent is required")
	}
	if o.parent != "" && o.childType == "" {
		return errors.New("-child-type is required with -parent")
	}
	switch o.format {
	case "json", "csv":
	case "geojson":
		if o.series {
			return errors.New("-format geojson does not support -series")
		}
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
	if o.series && o.grouped {
		return errors.New("-series and -grouped are mutually exclusive")
	}
	return nil
}

func (o options) selector() domain.Selector {
	if o.parent != "" {
		return domain.WithinSelector(o.parent, o.childType)
	}
	return domain.EntitiesSelector(splitList(o.entities)...)
}

func (o options) render(ctx context.Context, client *pipeline.Client) (string, error) {
	csvOpts := export.CSVOptions{Delimiter: o.delimiter}

	if o.series {
		params := pipeline.SeriesParams{
			Selector:           o.selector(),
			Variables:          splitList(o.variables),
			PerCapitaVariables: splitList(o.perCapita),
			StartDate:          o.startDate,
			EndDate:            o.endDate,
		}
		if o.format == "csv" {
			return client.GetCSVSeries(ctx, params, csvOpts)
		}
		rows, err := client.GetDataRowSeries(ctx, params)
		if err != nil {
			return "", err
		}
		return marshalIndent(rows)
	}

	params := pipeline.RowsParams{
		Selector:           o.selector(),
		Variables:          splitList(o.variables),
		Date:               o.date,
		PerCapitaVariables: splitList(o.perCapita),
	}
	switch {
	case o.format == "geojson":
		fc, err := client.GetGeoJSON(ctx, params, export.GeoJSONOptions{
			Property:      o.geoJSONKey,
			Delimiter:     o.delimiter,
			DisableRewind: o.noRewind,
		})
		if err != nil {
			return "", err
		}
		return marshalIndent(fc)
	case o.format == "csv" && o.grouped:
		return client.GetCSVGroupedByEntity(ctx, params, csvOpts)
	case o.format == "csv":
		return client.GetCSV(ctx, params, csvOpts)
	case o.grouped:
		rows, err := client.GetDataRowsGroupedByEntity(ctx, params)
		if err != nil {
			return "", err
		}
		return marshalIndent(rows)
	default:
		rows, err := client.GetDataRows(ctx, params)
		if err != nil {
			return "", err
		}
		return marshalIndent(rows)
	}
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode output: %w", err)
	}
	return string(data), nil
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
