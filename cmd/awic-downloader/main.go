package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/clms-hrwsi/awic-downloader/internal/awic"
	"github.com/clms-hrwsi/awic-downloader/internal/config"
	"github.com/clms-hrwsi/awic-downloader/internal/httpclient"
	"github.com/clms-hrwsi/awic-downloader/internal/logger"
	"github.com/clms-hrwsi/awic-downloader/internal/vector"
)

var Version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args))
}

func run(ctx context.Context, args []string) int {
	cmd := newCommand(config.FromEnv())
	if err := cmd.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var apiErr *awic.APIError
		if errors.As(err, &apiErr) {
			return 2
		}
		return 1
	}
	return 0
}

func newCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:    "awic-downloader",
		Usage:   "Download AWIC river water/ice observation statistics from the CLMS HR-WSI catalogue",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "return-mode",
				Usage: "store results in CSV files, return them in memory, or both (csv|variable|csv_and_variable)",
				Value: "csv",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "output directory for AWIC data, required for the csv modes",
			},
			&cli.StringFlag{
				Name:     "start-date",
				Usage:    "start date in format YYYY-MM-DD",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "completion-date",
				Usage:    "end date in format YYYY-MM-DD",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "cloud-coverage-max",
				Usage: "maximum percentage of cloud or cloud shadow data, between 0 and 100; negative leaves it unconstrained",
				Value: -1,
			},
			&cli.BoolFlag{
				Name:  "request-geometries",
				Usage: "also retrieve the matching river-segment geometries",
			},
			&cli.StringFlag{
				Name:  "geometry-wkt-wgs84",
				Usage: "WKT geometry in WGS84 (EPSG:4326) selecting the region of interest",
			},
			&cli.StringFlag{
				Name:  "geometry-wkt-laea",
				Usage: "WKT geometry in LAEA/ETRS89 (EPSG:3035) selecting the region of interest",
			},
			&cli.StringFlag{
				Name:  "geometry-file",
				Usage: "GeoJSON vector file selecting the region of interest; its coordinate system must be EPSG:4326 or EPSG:3035",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "catalogue base URL",
				Value: cfg.BaseURL,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "HTTP timeout per catalogue request (e.g. 30s, 1m)",
				Value: cfg.HTTPTimeout,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: cfg.LogLevel,
			},
			&cli.BoolFlag{
				Name:  "log-console",
				Usage: "human-readable console log output",
				Value: cfg.LogConsole,
			},
		},
		Action: download,
	}
}

func download(ctx context.Context, cmd *cli.Command) error {
	mode := cmd.String("return-mode")
	switch mode {
	case "csv", "variable", "csv_and_variable":
	default:
		return fmt.Errorf("invalid return-mode %q, must be csv, variable or csv_and_variable", mode)
	}
	writeFiles := mode != "variable"

	zl := logger.Build(logger.Config{
		Level:     cmd.String("log-level"),
		Console:   cmd.Bool("log-console"),
		Component: "awic-downloader",
	}, os.Stdout)
	log := logger.NewSlog(&zl)

	outputDir := cmd.String("output-dir")
	if writeFiles {
		if outputDir == "" {
			return fmt.Errorf("output-dir is required when return-mode is %q", mode)
		}
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		outputDir = abs
		if _, err := os.Stat(outputDir); err == nil {
			log.Warn("existing directory", "dir", outputDir)
		} else {
			log.Info("creating directory", "dir", outputDir)
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
	}

	q, err := buildQuery(cmd)
	if err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client, err := awic.New(log, httpclient.NewOutbound(timeout), cmd.String("base-url"))
	if err != nil {
		return err
	}

	requestGeometries := cmd.Bool("request-geometries")

	// geometries first so a failing filter is reported before the main query
	var geometries []awic.Geometry
	if requestGeometries {
		geometries, err = client.FetchGeometries(ctx, q)
		if err != nil {
			return err
		}
		log.Info("geometries found", "count", len(geometries))
	}

	products, err := client.FetchProducts(ctx, q)
	if err != nil {
		return err
	}

	if writeFiles {
		path, err := awic.WriteProducts(outputDir, products)
		if err != nil {
			return err
		}
		log.Info("wrote AWIC data", "file", path)

		if requestGeometries {
			path, err = awic.WriteGeometries(outputDir, geometries)
			if err != nil {
				return err
			}
			log.Info("wrote geometries", "file", path)
		}

		path, err = awic.WriteMetadata(outputDir)
		if err != nil {
			return err
		}
		log.Info("wrote metadata link", "file", path)
	}

	log.Info("end of AWIC download", "products", len(products), "geometries", len(geometries))
	return nil
}

func buildQuery(cmd *cli.Command) (awic.Query, error) {
	q := awic.Query{
		StartDate:        cmd.String("start-date"),
		CompletionDate:   cmd.String("completion-date"),
		CloudCoverageMax: int(cmd.Int("cloud-coverage-max")),
	}

	wgs84 := cmd.String("geometry-wkt-wgs84")
	laea := cmd.String("geometry-wkt-laea")
	file := cmd.String("geometry-file")

	set := 0
	for _, v := range []string{wgs84, laea, file} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return awic.Query{}, fmt.Errorf("geometry-wkt-wgs84, geometry-wkt-laea and geometry-file are mutually exclusive")
	}

	switch {
	case file != "":
		flt, err := vector.FromFile(file)
		if err != nil {
			return awic.Query{}, fmt.Errorf("geometry-file: %w", err)
		}
		switch flt.EPSG {
		case vector.EPSGWGS84:
			q.GeometryWKTWGS84 = flt.WKT
		case vector.EPSGLAEA:
			q.GeometryWKTLAEA = flt.WKT
		}
	case wgs84 != "":
		if err := vector.ValidateWKT(wgs84); err != nil {
			return awic.Query{}, fmt.Errorf("geometry-wkt-wgs84: %w", err)
		}
		q.GeometryWKTWGS84 = wgs84
	case laea != "":
		if err := vector.ValidateWKT(laea); err != nil {
			return awic.Query{}, fmt.Errorf("geometry-wkt-laea: %w", err)
		}
		q.GeometryWKTLAEA = laea
	}

	if err := q.Validate(); err != nil {
		return awic.Query{}, err
	}
	return q, nil
}
