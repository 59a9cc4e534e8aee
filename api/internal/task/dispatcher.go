package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dsa-validator/api/internal/extract"
	"dsa-validator/api/internal/llm"
	"dsa-validator/api/internal/prompt"
)

var (
	problemSchema   = extract.MustCompile("problem_validation.schema.json", prompt.ProblemValidationSchema)
	solutionSchema  = extract.MustCompile("solution_validation.schema.json", prompt.SolutionValidationSchema)
	testCasesSchema = extract.MustCompile("test_cases.schema.json", prompt.TestCasesSchema)
)

var (
	problemOptions   = llm.Options{Temperature: 0.1, MaxOutputTokens: 1024, ResponseMIMEType: llm.MIMEJSON}
	solutionOptions  = llm.Options{Temperature: 0.2, MaxOutputTokens: 1500, ResponseMIMEType: llm.MIMEJSON}
	testCasesOptions = llm.Options{Temperature: 0.3, MaxOutputTokens: 2000, ResponseMIMEType: llm.MIMEJSON}
)

var extractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dsa_validator",
	Subsystem: "extraction",
	Name:      "failures_total",
	Help:      "Model responses that could not be turned into a verdict",
}, []string{"task"})

// Dispatcher runs each task as prompt, gateway call, extraction. It keeps
// no state between calls and is safe for concurrent use.
type Dispatcher struct {
	gw     llm.Gateway
	logger zerolog.Logger
	tracer trace.Tracer
}

var _ Service = (*Dispatcher)(nil)

func NewDispatcher(gw llm.Gateway, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		gw:     gw,
		logger: logger,
		tracer: otel.Tracer("dsa-validator/api/internal/task"),
	}
}

func (d *Dispatcher) ValidateProblem(ctx context.Context, problem string) (ValidationVerdict, error) {
	var v ValidationVerdict
	if err := d.run(ctx, ValidateProblem, prompt.ProblemValidation(problem), problemOptions, problemSchema, &v); err != nil {
		return ValidationVerdict{}, err
	}
	if v.IsValid {
		v.SuggestedFixes = nil
	}
	return v, nil
}

func (d *Dispatcher) ValidateSolution(ctx context.Context, in SolutionSubmission) (SolutionVerdict, error) {
	lang := strings.TrimSpace(in.Language)
	if lang == "" {
		lang = DefaultLanguage
	}
	var v SolutionVerdict
	p := prompt.SolutionValidation(in.Problem, in.Code, lang)
	if err := d.run(ctx, ValidateSolution, p, solutionOptions, solutionSchema, &v); err != nil {
		return SolutionVerdict{}, err
	}
	return v, nil
}

func (d *Dispatcher) GenerateTestCases(ctx context.Context, in TestCaseRequest) ([]TestCase, error) {
	n := in.Count
	if n <= 0 {
		n = DefaultTestCaseCount
	}
	var cases []TestCase
	if err := d.run(ctx, GenerateTestCases, prompt.TestCaseGeneration(in.Problem, n), testCasesOptions, testCasesSchema, &cases); err != nil {
		return nil, err
	}
	if cases == nil {
		cases = []TestCase{}
	}
	return cases, nil
}

func (d *Dispatcher) run(ctx context.Context, name, p string, opt llm.Options, schema *jsonschema.Schema, out any) error {
	ctx, span := d.tracer.Start(ctx, "dispatcher."+name, trace.WithAttributes(
		attribute.String("llm.provider", d.gw.Name()),
		attribute.Int("prompt_bytes", len(p)),
	))
	defer span.End()

	err := d.call(llm.WithTask(ctx, name), name, p, opt, schema, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.kind", Kind(err)))
	}
	return err
}

func (d *Dispatcher) call(ctx context.Context, name, p string, opt llm.Options, schema *jsonschema.Schema, out any) error {
	if !d.gw.Configured() {
		return fmt.Errorf("%w: %s API key is not set: %w", ErrConfiguration, d.gw.Name(), llm.ErrNotConfigured)
	}

	raw, err := d.gw.Generate(ctx, p, opt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return &GatewayError{Provider: d.gw.Name(), Err: err}
	}

	if err := extract.Decode(raw, schema, out); err != nil {
		extractionFailures.WithLabelValues(name).Inc()
		d.logger.Warn().Err(err).
			Str("task", name).
			Str("provider", d.gw.Name()).
			Str("raw", extract.Truncate(raw, 512)).
			Msg("model response rejected")
		return err
	}
	return nil
}
