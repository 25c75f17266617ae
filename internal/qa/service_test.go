package qa

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talqs/talqs/backend/go-services/internal/apperrors"
	"github.com/talqs/talqs/backend/go-services/internal/generation"
)

type echoBackend struct {
	calls  atomic.Int32
	failOn string
}

func (e *echoBackend) Name() string               { return "echo" }
func (e *echoBackend) Load(context.Context) error { return nil }

func (e *echoBackend) Generate(_ context.Context, r generation.Request) (string, error) {
	e.calls.Add(1)
	if e.failOn != "" && strings.Contains(r.Prompt, e.failOn) {
		return "", errors.New("inference failed")
	}
	q := strings.TrimPrefix(r.Prompt, "question: ")
	return "generated: " + q[:strings.Index(q, " context:")], nil
}

func TestBatteryIsFreshCopy(t *testing.T) {
	a, err := Battery(Legal15)
	require.NoError(t, err)
	require.Len(t, a, 15)
	a[0] = "mutated"
	b, err := Battery(Legal15)
	require.NoError(t, err)
	require.Equal(t, "Who is the petitioner in the case?", b[0])

	c, err := Battery(Legal8)
	require.NoError(t, err)
	require.Len(t, c, 8)
	require.Equal(t, "What was the timeline of events?", c[7])

	_, err = Battery("legal99")
	require.Error(t, err)
}

func TestNewServiceValidatesConfig(t *testing.T) {
	_, err := NewService(nil, Config{Strategy: "magic", Battery: Legal8})
	require.Error(t, err)
	_, err = NewService(nil, Config{Strategy: StrategyRuleBased, Battery: "nope"})
	require.Error(t, err)
}

func TestAnswerValidation(t *testing.T) {
	svc, err := NewService(nil, Config{Strategy: StrategyRuleBased, Battery: Legal8})
	require.NoError(t, err)

	_, err = svc.Answer(context.Background(), " ", "Who?")
	require.True(t, apperrors.IsValidation(err))
	_, err = svc.Answer(context.Background(), "doc", "")
	require.True(t, apperrors.IsValidation(err))
	_, err = svc.AnswerBulk(context.Background(), "")
	require.True(t, apperrors.IsValidation(err))

	a, err := svc.Answer(context.Background(), "doc", "Were there any precedents?")
	require.NoError(t, err)
	require.Equal(t, "Several key precedents were cited including Diamond v. Diehr (1981).", a.Answer)
	require.False(t, a.Fallback)
}

func TestAnswerBulkKeepsOrderWithPartialFailures(t *testing.T) {
	b := &echoBackend{failOn: "evidence"}
	client := generation.NewClient(b, time.Second, nil)
	svc, err := NewService(client, Config{Strategy: StrategyGenerative, Battery: Legal8, Budget: 512, Concurrency: 3})
	require.NoError(t, err)

	doc := "The petitioner sued ABC Corporation over a patent."
	got, err := svc.AnswerBulk(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, got, 8)
	require.Equal(t, int32(8), b.calls.Load())

	questions := svc.Questions()
	for i, a := range got {
		require.Equal(t, questions[i], a.Question)
		if strings.Contains(a.Question, "evidence") {
			require.True(t, a.Fallback)
			require.Equal(t, generation.ReasonRuntime, a.Reason)
			require.Equal(t, "Evidence included source code comparisons and expert testimony.", a.Answer)
			continue
		}
		require.False(t, a.Fallback)
		require.Equal(t, "generated: "+a.Question, a.Answer)
	}
	require.True(t, AnyFallback(got))
}

func TestGenerativeWithoutBackendIsNotFallback(t *testing.T) {
	svc, err := NewService(nil, Config{Strategy: StrategyGenerative, Battery: Legal15})
	require.NoError(t, err)
	got, err := svc.AnswerBattery(context.Background(), "doc text", []string{"Who is the respondent?", "Unknown?"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "The respondent in this case is ABC Corporation.", got[0].Answer)
	require.False(t, AnyFallback(got))
	require.Equal(t, generation.ReasonDisabled, got[1].Reason)
}
