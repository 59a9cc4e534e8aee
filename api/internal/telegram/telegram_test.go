package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"dsa-validator/api/internal/extract"
	"dsa-validator/api/internal/llm"
	"dsa-validator/api/internal/task"
)

type fakeSender struct{ sent []tgbotapi.MessageConfig }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Text
}

type fakeService struct {
	problem  string
	solution task.SolutionSubmission
	tests    task.TestCaseRequest
	err      error
}

func (s *fakeService) ValidateProblem(_ context.Context, p string) (task.ValidationVerdict, error) {
	s.problem = p
	return task.ValidationVerdict{IsValid: false, Reason: "no bounds", SuggestedFixes: []string{"add n <= 10^5"}}, s.err
}

func (s *fakeService) ValidateSolution(_ context.Context, in task.SolutionSubmission) (task.SolutionVerdict, error) {
	s.solution = in
	score := 7
	return task.SolutionVerdict{IsCorrect: true, CorrectnessExplanation: "fine", CodeQualityScore: &score}, s.err
}

func (s *fakeService) GenerateTestCases(_ context.Context, in task.TestCaseRequest) ([]task.TestCase, error) {
	s.tests = in
	return []task.TestCase{{Input: "1", ExpectedOutput: "1", Explanation: "one"}}, s.err
}

type fakeGateway struct{}

func (fakeGateway) Name() string     { return "gemini" }
func (fakeGateway) Model() string    { return "gemini-2.0-flash" }
func (fakeGateway) Configured() bool { return false }
func (fakeGateway) Generate(context.Context, string, llm.Options) (string, error) {
	return "", nil
}

func command(text string) tgbotapi.Update {
	cmdLen := len(text)
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		cmdLen = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 42,
		Chat:      &tgbotapi.Chat{ID: 7},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func newRouter() (*Router, *fakeSender, *fakeService) {
	s := &fakeSender{}
	svc := &fakeService{}
	return &Router{Bot: s, Svc: svc, Gateway: fakeGateway{}, Logger: zerolog.Nop()}, s, svc
}

func TestProblemCommand(t *testing.T) {
	r, s, svc := newRouter()
	r.HandleUpdate(context.Background(), command("/problem Find the max subarray sum"))

	require.Equal(t, "Find the max subarray sum", svc.problem)
	require.Equal(t, int64(7), s.sent[0].ChatID)
	require.Equal(t, 42, s.sent[0].ReplyToMessageID)
	out := s.last(t)
	require.Contains(t, out, "not valid")
	require.Contains(t, out, "• add n <= 10^5")
}

func TestProblemCommandNeedsStatement(t *testing.T) {
	r, s, svc := newRouter()
	r.HandleUpdate(context.Background(), command("/problem"))
	require.Empty(t, svc.problem)
	require.Contains(t, s.last(t), "Usage: /problem")
}

func TestTestsCommand(t *testing.T) {
	r, s, svc := newRouter()
	r.HandleUpdate(context.Background(), command("/tests 3 Two sum"))
	require.Equal(t, task.TestCaseRequest{Problem: "Two sum", Count: 3}, svc.tests)
	require.Contains(t, s.last(t), "#1\nInput: 1")
}

func TestSolutionCommand(t *testing.T) {
	r, s, svc := newRouter()
	r.HandleUpdate(context.Background(), command("/solution go\nReverse a list.\n---\nfunc rev() {}"))
	require.Equal(t, task.SolutionSubmission{Problem: "Reverse a list.", Code: "func rev() {}", Language: "go"}, svc.solution)
	require.Contains(t, s.last(t), "Code quality: 7/10")
}

func TestHealthCommand(t *testing.T) {
	r, s, _ := newRouter()
	r.HandleUpdate(context.Background(), command("/health"))
	require.Contains(t, s.last(t), "gemini (gemini-2.0-flash), API key missing")
}

func TestUnknownCommandAndText(t *testing.T) {
	r, s, _ := newRouter()
	r.HandleUpdate(context.Background(), command("/nope"))
	require.Contains(t, s.last(t), "Unknown command")

	upd := command("hello")
	upd.Message.Entities = nil
	r.HandleUpdate(context.Background(), upd)
	require.Contains(t, s.last(t), "Send a command")

	r.HandleUpdate(context.Background(), tgbotapi.Update{})
	require.Len(t, s.sent, 2)
}

func TestCommandErrorsAreReported(t *testing.T) {
	r, s, svc := newRouter()
	svc.err = &extract.ExtractionError{Raw: "RAW", Cause: errors.New("invalid JSON")}
	r.HandleUpdate(context.Background(), command("/problem p"))
	out := s.last(t)
	require.Contains(t, out, task.KindExtraction)
	require.NotContains(t, out, "RAW")
	require.NotContains(t, out, "not valid")
}

func TestParseTests(t *testing.T) {
	cases := []struct {
		in    string
		want  task.TestCaseRequest
		isErr bool
	}{
		{in: "Two sum", want: task.TestCaseRequest{Problem: "Two sum", Count: 5}},
		{in: "3 Two sum", want: task.TestCaseRequest{Problem: "Two sum", Count: 3}},
		{in: "3\nTwo sum", want: task.TestCaseRequest{Problem: "Two sum", Count: 3}},
		{in: "10\nTwo\nsum", want: task.TestCaseRequest{Problem: "Two\nsum", Count: 10}},
		{in: "", isErr: true},
		{in: "4", isErr: true},
		{in: "0 Two sum", isErr: true},
	}
	for _, tc := range cases {
		got, err := parseTests(tc.in)
		if tc.isErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseSolution(t *testing.T) {
	cases := []struct {
		in    string
		want  task.SolutionSubmission
		isErr bool
	}{
		{
			in:   "/solution\nSum a list.\n---\nprint(sum(a))",
			want: task.SolutionSubmission{Problem: "Sum a list.", Code: "print(sum(a))", Language: "python"},
		},
		{
			in:   "/solution c++\nSum.\nMore text.\n---\nint main() {\n  return 0;\n}\n",
			want: task.SolutionSubmission{Problem: "Sum.\nMore text.", Code: "int main() {\n  return 0;\n}", Language: "c++"},
		},
		{
			in:   "/solution Sum a list of ints\n---\nx",
			want: task.SolutionSubmission{Problem: "Sum a list of ints", Code: "x", Language: "python"},
		},
		{
			in:   "/solution@dsa_bot rust\r\nP\r\n---\r\nfn main() {}",
			want: task.SolutionSubmission{Problem: "P", Code: "fn main() {}", Language: "rust"},
		},
		{in: "/solution\nno separator", isErr: true},
		{in: "/solution go\n---\ncode", isErr: true},
		{in: "/solution go\nP\n---\n", isErr: true},
	}
	for _, tc := range cases {
		got, err := parseSolution(tc.in)
		if tc.isErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestFormatSolutionOmitsMissingFields(t *testing.T) {
	out := formatSolution(task.SolutionVerdict{IsCorrect: false, CorrectnessExplanation: "off by one"})
	require.Equal(t, "❌ The solution is not correct.\n\noff by one", out)
}

func TestFormatValidationValid(t *testing.T) {
	out := formatValidation(task.ValidationVerdict{IsValid: true, Reason: "clear"})
	require.Equal(t, "✅ The problem is valid.\n\nclear", out)
}

func TestFormatError(t *testing.T) {
	require.Equal(t, "⚠️ extraction_error: the model returned an empty response",
		formatError(&extract.ExtractionError{Raw: "", Cause: extract.ErrEmpty}))
	require.Contains(t, formatError(&task.GatewayError{Provider: "gemini", Err: errors.New("quota")}), "gateway_error: gemini gateway: quota")
	require.Equal(t, "⚠️ internal_error: something went wrong", formatError(errors.New("boom")))
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", maxMessageLen)
	require.Equal(t, short, truncate(short))

	long := strings.Repeat("я", maxMessageLen)
	out := truncate(long)
	require.True(t, strings.HasSuffix(out, "…"))
	require.LessOrEqual(t, len(out), maxMessageLen+len("…"))
	require.True(t, strings.HasPrefix(out, "яя"))
	require.NotContains(t, out, "�")
}
