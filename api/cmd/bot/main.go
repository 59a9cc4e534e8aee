package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"dsa-validator/api/internal/config"
	"dsa-validator/api/internal/httpserver"
	"dsa-validator/api/internal/llm/provider"
	"dsa-validator/api/internal/logger"
	"dsa-validator/api/internal/task"
	"dsa-validator/api/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel, os.Stdout).With().Str("component", "bot").Logger()

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN is not set")
	}
	if !cfg.ProviderConfigured() {
		log.Warn().Str("provider", cfg.Provider).Str("env", cfg.APIKeyEnv()).Msg("API key is not set")
	}

	gw, err := provider.Select(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build gateway")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram login")
	}
	bot.Debug = false
	log.Info().Str("bot", bot.Self.UserName).Str("provider", gw.Name()).Msg("bot authorized")

	r := &telegram.Router{
		Bot:     bot,
		Svc:     task.NewDispatcher(gw, log),
		Gateway: gw,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	var wg sync.WaitGroup
	dispatch := func(upd tgbotapi.Update) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.HandleUpdate(ctx, upd)
		}()
	}

	srv := httpserver.New(cfg.Addr(), mux, cfg.RequestTimeout)
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		err = runWebhook(ctx, bot, mux, srv, webhookURL, dispatch, log)
	} else {
		err = runPollingMode(ctx, bot, srv, dispatch, log)
	}
	wg.Wait()
	if err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("bot stopped")
}

func runWebhook(ctx context.Context, bot *tgbotapi.BotAPI, mux *http.ServeMux, srv *http.Server,
	baseURL string, dispatch func(tgbotapi.Update), log zerolog.Logger) error {
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return err
	}

	mux.HandleFunc("POST "+path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn().Err(err).Msg("bad webhook update")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		dispatch(*upd)
		w.WriteHeader(http.StatusOK)
	})

	log.Info().Str("path", path).Msg("webhook registered")
	return httpserver.Run(ctx, srv, log)
}

func runPollingMode(ctx context.Context, bot *tgbotapi.BotAPI, srv *http.Server,
	dispatch func(tgbotapi.Update), log zerolog.Logger) error {
	// a webhook left over from a previous deployment blocks getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warn().Err(err).Msg("delete webhook")
	}

	errc := make(chan error, 1)
	go func() { errc <- httpserver.Run(ctx, srv, log) }()

	runPolling(ctx, bot, dispatch, log)
	return <-errc
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

func clampDelay(d time.Duration) time.Duration {
	const (
		baseDelay = time.Second
		maxDelay  = 15 * time.Second
	)
	if d < baseDelay {
		return baseDelay
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update), log zerolog.Logger) {
	offset := 0
	for ctx.Err() == nil {
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err))
			log.Warn().Err(err).Dur("retry_in", d).Msg("polling error")
			sleepCtx(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleepCtx(ctx, 200*time.Millisecond)
		}
	}
	log.Info().Msg("polling stopped")
}

// ---------------- Helpers -----------------

// shortHash derives a stable webhook path from the token (FNV-1a, not a
// secret on its own).
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
