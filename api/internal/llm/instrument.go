package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dsa_validator",
		Subsystem: "gateway",
		Name:      "duration_seconds",
		Help:      "Duration of model gateway calls",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
	}, []string{"provider", "task"})

	gatewayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dsa_validator",
		Subsystem: "gateway",
		Name:      "failures_total",
		Help:      "Number of failed model gateway calls",
	}, []string{"provider", "task"})
)

type instrumented struct {
	Gateway
	tracer trace.Tracer
	logger zerolog.Logger
}

// Instrument wraps gw with a span, latency/failure metrics and debug logs
// around every Generate call.
func Instrument(gw Gateway, logger zerolog.Logger) Gateway {
	return &instrumented{
		Gateway: gw,
		tracer:  otel.Tracer("dsa-validator/api/internal/llm"),
		logger:  logger,
	}
}

func (i *instrumented) Generate(parent context.Context, prompt string, opt Options) (string, error) {
	task := TaskFrom(parent)
	ctx, span := i.tracer.Start(parent, "gateway.generate", trace.WithAttributes(
		attribute.String("llm.provider", i.Name()),
		attribute.String("llm.model", i.Model()),
		attribute.String("task", task),
	))
	defer span.End()

	start := time.Now()
	out, err := i.Gateway.Generate(ctx, prompt, opt)
	elapsed := time.Since(start)
	gatewayDuration.WithLabelValues(i.Name(), task).Observe(elapsed.Seconds())

	if err != nil {
		gatewayFailures.WithLabelValues(i.Name(), task).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.logger.Warn().Err(err).
			Str("provider", i.Name()).
			Str("model", i.Model()).
			Str("task", task).
			Dur("elapsed", elapsed).
			Msg("gateway call failed")
		return "", err
	}

	span.SetAttributes(attribute.Int("llm.response_bytes", len(out)))
	i.logger.Debug().
		Str("provider", i.Name()).
		Str("model", i.Model()).
		Str("task", task).
		Dur("elapsed", elapsed).
		Int("response_bytes", len(out)).
		Msg("gateway call finished")
	return out, nil
}
