package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"npc-server/internal/ai"
	"npc-server/internal/mocks"
	"npc-server/internal/worldmodel"
	"npc-server/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const eldraSummary = "Eldra is split between the Sylvan Wardens of the forest and the Ashfang Legion of the burned plains."

const liraJSON = `{"name": "Lira", "faction": "Sylvan Wardens", "profession": "Scout", "personality_traits": ["kind", "watchful"], "background": "Raised among the old oaks."}`

func isSummaryPrompt(p string) bool { return strings.HasPrefix(p, "Analyze this story") }
func isNamePrompt(p string) bool    { return strings.HasPrefix(p, "Based on the story world below") }
func isDetailsPrompt(p string) bool { return strings.HasPrefix(p, "Create detailed attributes") }
func isStrictPrompt(p string) bool  { return strings.HasPrefix(p, "Create a valid JSON object") }

// newGenerator строит мир со сводкой eldraSummary и генератор поверх того же мок-клиента.
func newGenerator(t *testing.T) (*Generator, *mocks.MockAIClient) {
	t.Helper()
	client := mocks.NewMockAIClient(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(isSummaryPrompt)).Return(eldraSummary, nil).Once()
	world := worldmodel.NewBuilder(client, zap.NewNop()).Build(context.Background(), "In the kingdom of Eldra...")
	return New(world, client, zap.NewNop()), client
}

func callsMatching(client *mocks.MockAIClient, match func(string) bool) int {
	n := 0
	for _, call := range client.Calls {
		if match(call.Arguments.String(1)) {
			n++
		}
	}
	return n
}

func TestGenerateName_RegistryAccumulates(t *testing.T) {
	gen, client := newGenerator(t)

	var prompts []string
	client.On("Complete", mock.Anything, mock.MatchedBy(isNamePrompt)).
		Run(func(args mock.Arguments) { prompts = append(prompts, args.String(1)) }).
		Return("  Lira  ", nil).Once()
	client.On("Complete", mock.Anything, mock.MatchedBy(isNamePrompt)).
		Run(func(args mock.Arguments) { prompts = append(prompts, args.String(1)) }).
		Return("Vorn", nil).Once()
	client.On("Complete", mock.Anything, mock.MatchedBy(isNamePrompt)).
		Run(func(args mock.Arguments) { prompts = append(prompts, args.String(1)) }).
		Return("Kael", nil).Once()
	client.On("Complete", mock.Anything, mock.MatchedBy(isNamePrompt)).
		Run(func(args mock.Arguments) { prompts = append(prompts, args.String(1)) }).
		Return("Kael\n", nil).Once()

	first, err := gen.GenerateName(context.Background(), "a forest scout")
	require.NoError(t, err)
	assert.Equal(t, "Lira", first)
	assert.Equal(t, []string{"Lira"}, gen.Registry().Names())

	_, err = gen.GenerateName(context.Background(), "a legion captain")
	require.NoError(t, err)
	_, err = gen.GenerateName(context.Background(), "a healer")
	require.NoError(t, err)

	// Повтор имени не добавляется в реестр второй раз.
	again, err := gen.GenerateName(context.Background(), "another healer")
	require.NoError(t, err)
	assert.Equal(t, "Kael", again)

	assert.Equal(t, []string{"Lira", "Vorn", "Kael"}, gen.Registry().Names())
	require.Len(t, prompts, 4)
	assert.Contains(t, prompts[0], "World summary:\n"+eldraSummary)
	assert.Contains(t, prompts[0], "User request: a forest scout")
	assert.Contains(t, prompts[0], "Previously generated names (avoid them): \n")
	assert.Contains(t, prompts[2], "Previously generated names (avoid them): Lira, Vorn\n")
	assert.Contains(t, prompts[3], "Previously generated names (avoid them): Lira, Vorn, Kael\n")
}

func TestGenerateName_GatewayErrorPropagates(t *testing.T) {
	gen, client := newGenerator(t)
	gatewayErr := fmt.Errorf("%w: %w: timeout", ai.ErrAIGenerationFailed, ai.ErrTransient)
	client.On("Complete", mock.Anything, mock.MatchedBy(isNamePrompt)).Return("", gatewayErr).Once()

	_, err := gen.GenerateName(context.Background(), "anyone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrTransient))
	assert.Zero(t, gen.Registry().Len())
}

func TestGenerateDetails_FencedAndPlainAreEqual(t *testing.T) {
	outputs := []string{
		liraJSON,
		"```json\n" + liraJSON + "\n```",
		"```\n" + liraJSON + "```",
		"\n  " + liraJSON + "  \n",
	}
	var results []*models.CharacterRecord
	for _, out := range outputs {
		gen, client := newGenerator(t)
		client.On("Complete", mock.Anything, mock.MatchedBy(isDetailsPrompt)).Return(out, nil).Once()

		record, err := gen.GenerateDetails(context.Background(), "Lira", "a forest scout")
		require.NoError(t, err, out)
		results = append(results, record)
		assert.Equal(t, 0, callsMatching(client, isStrictPrompt))
	}
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
	assert.Equal(t, "Sylvan Wardens", results[0].Faction)
	assert.Equal(t, "kind, watchful", results[0].PersonalityTraits.String())
}

func TestGenerateDetails_RetryOnceOnMalformed(t *testing.T) {
	gen, client := newGenerator(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(isDetailsPrompt)).Return("Sure! Here is Lira: {name: Lira", nil).Once()
	client.On("Complete", mock.Anything, mock.MatchedBy(isStrictPrompt)).Return("  "+liraJSON+"\n", nil).Once()

	record, err := gen.GenerateDetails(context.Background(), "Lira", "")
	require.NoError(t, err)
	assert.Equal(t, "Lira", record.Name)
	assert.Equal(t, 1, callsMatching(client, isDetailsPrompt))
	assert.Equal(t, 1, callsMatching(client, isStrictPrompt))
}

func TestGenerateDetails_MissingFieldTriggersRetry(t *testing.T) {
	gen, client := newGenerator(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(isDetailsPrompt)).
		Return(`{"name": "Lira", "faction": "Sylvan Wardens"}`, nil).Once()
	client.On("Complete", mock.Anything, mock.MatchedBy(isStrictPrompt)).Return(liraJSON, nil).Once()

	record, err := gen.GenerateDetails(context.Background(), "Lira", "")
	require.NoError(t, err)
	assert.Equal(t, "Raised among the old oaks.", record.Background)
}

func TestGenerateDetails_DoubleFailure(t *testing.T) {
	gen, client := newGenerator(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(isDetailsPrompt)).Return("not json", nil).Once()
	// повторный ответ только обрезается, ограждение ``` не снимается
	client.On("Complete", mock.Anything, mock.MatchedBy(isStrictPrompt)).Return("```json\n"+liraJSON+"\n```", nil).Once()

	record, err := gen.GenerateDetails(context.Background(), "Lira", "")
	require.Error(t, err)
	assert.Nil(t, record)

	var malformed *MalformedGenerationError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "Lira", malformed.Name)
	assert.True(t, errors.Is(err, models.ErrMalformedGeneration))
	client.AssertNumberOfCalls(t, "Complete", 3) // сводка + 2 попытки
}

func TestGenerateDetails_GatewayErrorSkipsRetry(t *testing.T) {
	gen, client := newGenerator(t)
	gatewayErr := fmt.Errorf("%w: %w: empty response", ai.ErrAIGenerationFailed, ai.ErrContent)
	client.On("Complete", mock.Anything, mock.MatchedBy(isDetailsPrompt)).Return("", gatewayErr).Once()

	_, err := gen.GenerateDetails(context.Background(), "Lira", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrContent))
	assert.False(t, errors.Is(err, models.ErrMalformedGeneration))
	assert.Equal(t, 0, callsMatching(client, isStrictPrompt))
}

func TestGenerateDetails_EmptyNameGeneratesNameFirst(t *testing.T) {
	gen, client := newGenerator(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(isNamePrompt)).Return("Lira", nil).Once()
	client.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return isDetailsPrompt(p) && strings.Contains(p, `the character "Lira"`) &&
			strings.Contains(p, "User request (if any): No specific request")
	})).Return(liraJSON, nil).Once()

	record, err := gen.GenerateDetails(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Lira", record.Name)
	assert.Equal(t, []string{"Lira"}, gen.Registry().Names())
}

func TestNameRegistry_Concurrent(t *testing.T) {
	r := NewNameRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add(fmt.Sprintf("name-%d", i%10))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, r.Len())
}
