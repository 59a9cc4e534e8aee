package handle

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"dsa-validator/api/internal/extract"
	"dsa-validator/api/internal/llm"
	"dsa-validator/api/internal/middleware"
	"dsa-validator/api/internal/task"
)

const (
	KindRequest = "request_error"

	// MaxTimeout caps the per-request override.
	MaxTimeout = 10 * time.Minute
)

type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

type Handle struct {
	svc      task.Service
	gw       llm.Gateway
	validate *validator.Validate
	timeout  time.Duration
	maxBody  int64
	logger   zerolog.Logger
}

func New(svc task.Service, gw llm.Gateway, opts Options, logger zerolog.Logger) *Handle {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handle{
		svc:      svc,
		gw:       gw,
		validate: v,
		timeout:  opts.Timeout,
		maxBody:  opts.MaxBodyBytes,
		logger:   logger,
	}
}

func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /validate-problem", h.ValidateProblem)
	mux.HandleFunc("POST /validate-solution", h.ValidateSolution)
	mux.HandleFunc("POST /generate-test-cases", h.GenerateTestCases)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
}

type errorBody struct {
	Detail    string `json:"detail"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		b = []byte(`{"detail":"encode response","kind":"internal_error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func (h *Handle) fail(w http.ResponseWriter, r *http.Request, code int, kind, detail string) {
	writeJSON(w, code, errorBody{
		Detail:    detail,
		Kind:      kind,
		RequestID: middleware.RequestIDFrom(r.Context()),
	})
}

// writeError maps a task error onto a status code. Raw model output never
// reaches the body.
func (h *Handle) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := task.Kind(err)
	code := http.StatusInternalServerError
	detail := "internal server error"

	var gwErr *task.GatewayError
	switch kind {
	case task.KindConfiguration:
		code, detail = http.StatusServiceUnavailable, err.Error()
	case task.KindGateway:
		code, detail = http.StatusBadGateway, err.Error()
		if errors.As(err, &gwErr) && gwErr.Timeout() {
			code = http.StatusGatewayTimeout
		}
	case task.KindExtraction:
		detail = "model response could not be parsed into the expected JSON"
		if errors.Is(err, extract.ErrEmpty) {
			detail = "model returned an empty response"
		}
	default:
		h.logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFrom(r.Context())).
			Msg("unexpected task error")
	}
	h.fail(w, r, code, kind, detail)
}

// decode reads a size-limited JSON body into dst and validates it. On
// failure the response has already been written.
func (h *Handle) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, http.StatusRequestEntityTooLarge, KindRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		h.fail(w, r, http.StatusBadRequest, KindRequest, "read body: "+err.Error())
		return false
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		h.fail(w, r, http.StatusUnprocessableEntity, KindRequest, "bad json: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.fail(w, r, http.StatusUnprocessableEntity, KindRequest, validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}

// deadline is the configured timeout unless the caller overrides it with
// X-Request-Timeout or ?timeoutSec= (seconds).
func (h *Handle) deadline(r *http.Request) time.Duration {
	d := h.timeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			d = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			d = time.Duration(v) * time.Second
		}
	}
	if d > MaxTimeout {
		d = MaxTimeout
	}
	return d
}
