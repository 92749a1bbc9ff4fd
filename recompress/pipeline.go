package recompress

import (
	"context"

	"github.com/pdfslim/pdfslim/imaging"
	"github.com/pdfslim/pdfslim/observability"
)

// Filter is the declared storage encoding of an image object's stream.
type Filter int

const (
	FilterNone Filter = iota
	FilterFlate
	FilterDCT
	FilterOther
)

func (f Filter) String() string {
	switch f {
	case FilterFlate:
		return "FlateDecode"
	case FilterDCT:
		return "DCTDecode"
	case FilterNone:
		return "None"
	}
	return "Other"
}

// Handle is one embedded raster image in the host document's object graph.
// Apply must install the replacement atomically: bytes, filter tag,
// dimensions, bit depth, and colorspace tag in one step.
type Handle interface {
	imaging.Source
	Filter() Filter
	Apply(enc *Encoded) error
}

// Walker yields image handles in document order. The sequence is lazy, finite,
// and non-restartable; handles shared across pages are yielded once per
// referencing page.
type Walker interface {
	Next() (Handle, bool)
}

// Config carries the pipeline's tuning knobs. Qualities are on the codec's
// 1-100 scale.
type Config struct {
	ColorQuality     int
	GrayscaleQuality int
	Logger           observability.Logger
	Tracer           observability.Tracer
}

// DefaultConfig matches the balanced preset.
func DefaultConfig() Config {
	return Config{ColorQuality: 45, GrayscaleQuality: 55}
}

// Stats summarizes one pipeline run.
type Stats struct {
	Seen       int
	Committed  int
	Skipped    map[SkipReason]int
	BytesSaved int64
}

type Pipeline struct {
	cfg Config
}

func New(cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.ColorQuality <= 0 {
		cfg.ColorQuality = def.ColorQuality
	}
	if cfg.GrayscaleQuality <= 0 {
		cfg.GrayscaleQuality = def.GrayscaleQuality
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	return &Pipeline{cfg: cfg}
}

// Run processes every handle the walker yields, one at a time: eligibility
// filter, extract, recompress, evaluate, commit or skip. Per-handle failures
// are logged and discarded; they never abort the walk. Cancellation is honored
// between handles only.
func (p *Pipeline) Run(ctx context.Context, w Walker) (*Stats, error) {
	ctx, span := p.cfg.Tracer.StartSpan(ctx, "recompress.run")
	defer span.Finish()

	log := p.cfg.Logger
	stats := &Stats{Skipped: make(map[SkipReason]int)}

	for {
		if err := ctx.Err(); err != nil {
			span.SetError(err)
			return stats, err
		}
		h, ok := w.Next()
		if !ok {
			break
		}
		stats.Seen++

		// Only raw deflate-compressed samples are eligible; anything already
		// stored with a lossy codec is presumed near-optimal.
		if h.Filter() != FilterFlate {
			stats.Skipped[SkipAlreadyTargetFilter]++
			log.Debug("skipping image", logFields(h, observability.String("reason", SkipAlreadyTargetFilter.String()))...)
			continue
		}

		original, err := h.ReadBytes()
		if err != nil {
			stats.Skipped[SkipExtractionFailed]++
			log.Warn("cannot read image stream", logFields(h, observability.Error("err", err))...)
			continue
		}

		img, err := imaging.Extract(h)
		if err != nil {
			stats.Skipped[SkipExtractionFailed]++
			log.Warn("extraction failed", logFields(h, observability.Error("err", err))...)
			continue
		}

		enc, err := Recompress(img, p.cfg.ColorQuality, p.cfg.GrayscaleQuality)
		if err != nil {
			// Codec rejection is handled like an extraction failure: the
			// original stream stays in place.
			stats.Skipped[SkipExtractionFailed]++
			log.Warn("encoding failed", logFields(h, observability.Error("err", err))...)
			continue
		}

		d := Evaluate(len(original), enc)
		if !d.Commit {
			stats.Skipped[d.Reason]++
			log.Debug("skipping image", logFields(h,
				observability.String("reason", d.Reason.String()),
				observability.Float64("savings", d.Savings))...)
			continue
		}

		if err := h.Apply(enc); err != nil {
			stats.Skipped[SkipExtractionFailed]++
			log.Warn("commit failed", logFields(h, observability.Error("err", err))...)
			continue
		}
		stats.Committed++
		stats.BytesSaved += int64(len(original) - len(enc.Data))
		log.Info("image recompressed", logFields(h,
			observability.Int("encoded_bytes", len(enc.Data)),
			observability.Float64("savings", d.Savings))...)
	}

	span.SetTag(observability.MetricImagesSeen, stats.Seen)
	span.SetTag(observability.MetricImagesCommitted, stats.Committed)
	span.SetTag(observability.MetricBytesSaved, stats.BytesSaved)
	return stats, nil
}

func logFields(h Handle, extra ...observability.Field) []observability.Field {
	fields := []observability.Field{
		observability.Int("width", h.Width()),
		observability.Int("height", h.Height()),
		observability.String("colorspace", h.ColorSpace().String()),
	}
	return append(fields, extra...)
}
