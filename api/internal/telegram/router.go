package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"dsa-validator/api/internal/llm"
	"dsa-validator/api/internal/task"
)

const maxMessageLen = 3900

// Sender is the part of *tgbotapi.BotAPI the router needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Router answers bot commands. Every command carries all of its input, so
// the router keeps no per-chat state.
type Router struct {
	Bot     Sender
	Svc     task.Service
	Gateway llm.Gateway
	Timeout time.Duration
	Logger  zerolog.Logger
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	cid := msg.Chat.ID

	if !msg.IsCommand() {
		if strings.TrimSpace(msg.Text) != "" {
			r.reply(msg, "Send a command. "+shortUsage)
		}
		return
	}

	args := msg.CommandArguments()
	log := r.Logger.With().Int64("chat_id", cid).Str("command", msg.Command()).Logger()
	log.Debug().Msg("telegram command")

	switch msg.Command() {
	case "start", "help":
		r.reply(msg, usage)
	case "health":
		r.reply(msg, formatHealth(r.Gateway))
	case "problem":
		problem := strings.TrimSpace(args)
		if problem == "" {
			r.reply(msg, "Usage: /problem <statement>")
			return
		}
		r.run(ctx, msg, log, func(ctx context.Context) (string, error) {
			v, err := r.Svc.ValidateProblem(ctx, problem)
			return formatValidation(v), err
		})
	case "tests":
		in, err := parseTests(args)
		if err != nil {
			r.reply(msg, err.Error())
			return
		}
		r.run(ctx, msg, log, func(ctx context.Context) (string, error) {
			cases, err := r.Svc.GenerateTestCases(ctx, in)
			return formatTestCases(cases), err
		})
	case "solution":
		in, err := parseSolution(msg.Text)
		if err != nil {
			r.reply(msg, err.Error())
			return
		}
		r.run(ctx, msg, log, func(ctx context.Context) (string, error) {
			v, err := r.Svc.ValidateSolution(ctx, in)
			return formatSolution(v), err
		})
	default:
		r.reply(msg, "Unknown command. "+shortUsage)
	}
}

func (r *Router) run(ctx context.Context, msg *tgbotapi.Message, log zerolog.Logger, fn func(context.Context) (string, error)) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := fn(ctx)
	if err != nil {
		log.Warn().Err(err).Str("kind", task.Kind(err)).Dur("elapsed", time.Since(start)).Msg("telegram command failed")
		r.reply(msg, formatError(err))
		return
	}
	r.reply(msg, text)
}

func (r *Router) reply(to *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(to.Chat.ID, truncate(text))
	out.ReplyToMessageID = to.MessageID
	if _, err := r.Bot.Send(out); err != nil {
		r.Logger.Warn().Err(err).Int64("chat_id", to.Chat.ID).Msg("telegram send failed")
	}
}

func truncate(text string) string {
	if len(text) <= maxMessageLen {
		return text
	}
	cut := maxMessageLen
	for cut > 0 && !utf8RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

const shortUsage = "Try /help."

var usage = strings.Join([]string{
	"DSA validator bot.",
	"",
	"/problem <statement> - check that a problem statement is well-formed",
	"/tests [n] <statement> - generate n test cases (default " + fmt.Sprint(task.DefaultTestCaseCount) + ")",
	"/solution [language]",
	"<statement>",
	"---",
	"<code>",
	"  - check a solution (default language " + task.DefaultLanguage + ")",
	"/health - provider status",
}, "\n")
