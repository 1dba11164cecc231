// Package pipeline runs a findings batch through the compliance engine:
// annotate, aggregate, score and export. Each stage is traced and every log
// record carries the run's run_id.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/user/cloudcomply/pkg/engine"
	"github.com/user/cloudcomply/pkg/report"
	"github.com/user/cloudcomply/pkg/telemetry"
)

// Options controls a single run.
type Options struct {
	// OutputDir receives the reports. Created when missing.
	OutputDir string

	// Framework restricts the run to one framework; "" uses every loaded one.
	Framework string

	// MetricsFile, when set, receives a Prometheus textfile of the scores.
	MetricsFile string

	// SkipCSV disables the annotated findings export.
	SkipCSV bool

	// Now stamps the report file names (default: time.Now).
	Now func() time.Time
}

// Outcome lists what a run produced. Paths are empty for reports that were
// not written.
type Outcome struct {
	RunID       string
	Result      *report.Result
	JSONPath    string
	HTMLPath    string
	CSVPath     string
	MetricsPath string
}

// Pipeline evaluates findings batches against a loaded catalog.
type Pipeline struct {
	catalog *engine.Catalog
	mapper  *engine.Mapper
	log     *slog.Logger
	tracer  trace.Tracer
}

// New creates a pipeline over catalog.
func New(catalog *engine.Catalog, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = engine.NewCatalog()
	}
	return &Pipeline{
		catalog: catalog,
		mapper:  engine.NewMapper(catalog, logger),
		log:     logger,
		tracer:  telemetry.Tracer(),
	}
}

// LoadCatalog loads the framework directory inside a trace span.
func LoadCatalog(ctx context.Context, dir string, logger *slog.Logger) *engine.Catalog {
	_, span := telemetry.Tracer().Start(ctx, "catalog.load",
		trace.WithAttributes(attribute.String("compliance.dir", dir)))
	defer span.End()

	c := engine.LoadCatalog(dir, logger)
	span.SetAttributes(attribute.Int("compliance.frameworks", c.Len()))
	return c
}

// Catalog returns the catalog the pipeline evaluates against.
func (p *Pipeline) Catalog() *engine.Catalog {
	return p.catalog
}

// Evaluate annotates, aggregates and scores a batch without writing anything.
func (p *Pipeline) Evaluate(ctx context.Context, findings []engine.Finding, framework string, now time.Time) *report.Result {
	return p.evaluate(ctx, p.log, findings, framework, now)
}

func (p *Pipeline) evaluate(ctx context.Context, log *slog.Logger, findings []engine.Finding, framework string, now time.Time) *report.Result {
	_, span := p.tracer.Start(ctx, "findings.annotate",
		trace.WithAttributes(attribute.Int("findings.count", len(findings))))
	mapper := p.mapper
	if log != p.log {
		mapper = engine.NewMapper(p.catalog, log)
	}
	annotated := mapper.Annotate(findings, framework)
	span.End()

	_, span = p.tracer.Start(ctx, "controls.aggregate")
	defer span.End()

	scope := p.catalog
	if framework != "" {
		fw, ok := p.catalog.Get(framework)
		if ok {
			scope = engine.NewCatalog(fw)
		} else {
			scope = engine.NewCatalog()
		}
	}
	res := report.Build(scope, annotated, now)
	for _, s := range res.Sections {
		if s.Scored {
			span.SetAttributes(attribute.Float64("compliance.score."+s.Framework.Name, s.Score.Percentage))
		}
	}
	return res
}

// Run evaluates findings and writes every report. An exporter failure is
// logged and returned, joined with the others, after the remaining exporters
// have run. An empty batch writes nothing.
func (p *Pipeline) Run(ctx context.Context, findings []engine.Finding, opts Options) (*Outcome, error) {
	runID := uuid.New().String()
	log := p.log.With("run_id", runID)
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	ctx, span := p.tracer.Start(ctx, "compliance.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("findings.count", len(findings)),
		attribute.Int("compliance.frameworks", p.catalog.Len()),
	))
	defer span.End()

	out := &Outcome{RunID: runID}
	out.Result = p.evaluate(ctx, log, findings, opts.Framework, now())

	if out.Result.Empty() {
		log.Warn("no findings to map to compliance frameworks, no reports written")
		return out, nil
	}

	_, exportSpan := p.tracer.Start(ctx, "reports.export")
	defer exportSpan.End()

	var errs []error
	export := func(format string, write func() (string, error)) string {
		path, err := write()
		if err != nil {
			log.Error("report export failed", "format", format, "error", err)
			errs = append(errs, err)
			exportSpan.RecordError(err, trace.WithAttributes(attribute.String("report.format", format)))
			return ""
		}
		return path
	}

	out.JSONPath = export("json", func() (string, error) {
		return report.WriteJSON(opts.OutputDir, out.Result, log)
	})
	out.HTMLPath = export("html", func() (string, error) {
		return report.WriteHTML(opts.OutputDir, out.Result, log)
	})
	if !opts.SkipCSV {
		out.CSVPath = export("csv", func() (string, error) {
			return report.WriteCSV(opts.OutputDir, out.Result, log)
		})
	}
	if opts.MetricsFile != "" {
		out.MetricsPath = export("metrics", func() (string, error) {
			if err := report.WriteMetrics(opts.MetricsFile, out.Result); err != nil {
				return "", err
			}
			log.Info("metrics written", "path", opts.MetricsFile)
			return opts.MetricsFile, nil
		})
	}

	err := errors.Join(errs...)
	if err != nil {
		exportSpan.SetStatus(codes.Error, "one or more reports failed")
	}
	return out, err
}
