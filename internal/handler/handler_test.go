package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"npc-server/internal/ai"
	"npc-server/internal/mocks"
	"npc-server/internal/service"
	"npc-server/internal/worldmodel"
	"npc-server/shared/models"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	eldraContent = "In the kingdom of Eldra, the Sylvan Wardens guard the forests while the Ashfang Legion burns the border towns."
	liraJSON     = `{"name": "Lira", "faction": "Sylvan Wardens", "profession": "Scout", "personality_traits": ["kind", "watchful"], "background": "Raised among the old oaks."}`
)

var errTransient = fmt.Errorf("%w: %w: connection refused", ai.ErrAIGenerationFailed, ai.ErrTransient)

func init() {
	gin.SetMode(gin.TestMode)
}

func promptHasPrefix(prefix string) interface{} {
	return mock.MatchedBy(func(p string) bool { return strings.HasPrefix(p, prefix) })
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type testEnv struct {
	stories    *mocks.MockStoryRepository
	characters *mocks.MockCharacterRepository
	turns      *mocks.MockConversationRepository
	client     *mocks.MockAIClient
	publisher  *mocks.MockEventPublisher
	router     *gin.Engine
}

func newTestEnv(t *testing.T, llmLimiter rateli.Store) *testEnv {
	env := &testEnv{
		stories:    mocks.NewMockStoryRepository(t),
		characters: mocks.NewMockCharacterRepository(t),
		turns:      mocks.NewMockConversationRepository(t),
		client:     mocks.NewMockAIClient(t),
		publisher:  mocks.NewMockEventPublisher(t),
		router:     gin.New(),
	}
	logger := zap.NewNop()
	builder := worldmodel.NewBuilder(env.client, logger)
	h := NewNPCHandler(
		service.NewStoryService(env.stories, builder, logger),
		service.NewCharacterService(env.stories, env.characters, builder, env.client, env.publisher, logger),
		service.NewConversationService(env.characters, env.turns, env.client, env.publisher,
			fixedClock{time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}, logger),
		logger,
	)
	h.RegisterRoutes(env.router, llmLimiter)
	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) expectStory(id uuid.UUID) {
	e.stories.On("GetByID", mock.Anything, id).
		Return(&models.Story{ID: id, Title: "Eldra", Content: eldraContent}, nil).Once()
	e.client.On("Complete", mock.Anything, promptHasPrefix("Analyze this story")).Return("Eldra summary", nil).Once()
}

func (e *testEnv) expectCharacter(id uuid.UUID, traits models.PersonalityTraits) {
	e.characters.On("GetByID", mock.Anything, id).Return(&models.Character{
		ID:                id,
		StoryID:           uuid.New(),
		Name:              "Lira",
		Faction:           "Sylvan Wardens",
		Profession:        "Scout",
		PersonalityTraits: traits,
		Background:        "Raised among the old oaks.",
	}, nil)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAskQuestion(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.expectStory(storyID)
		env.client.On("Complete", mock.Anything, "Story:\n\n"+eldraContent+"\n\nQuestion: Who guards the forests?").
			Return("The Sylvan Wardens.", nil).Once()

		w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/ask-question", askQuestionRequest{Question: "Who guards the forests?"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"answer":"The Sylvan Wardens."}`, w.Body.String())
	})

	t.Run("degraded answer is still 200", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.expectStory(storyID)
		env.client.On("Complete", mock.Anything, promptHasPrefix("Story:")).Return("", errTransient).Once()

		w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/ask-question", askQuestionRequest{Question: "Who?"})
		require.Equal(t, http.StatusOK, w.Code)
		var resp askQuestionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.Answer, "Error while answering the question:"))
	})

	t.Run("unknown story", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.stories.On("GetByID", mock.Anything, storyID).Return(nil, models.ErrNotFound).Once()

		w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/ask-question", askQuestionRequest{Question: "Who?"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, models.ErrCodeNotFound, decodeError(t, w).Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		env := newTestEnv(t, nil)
		path := "/stories/" + uuid.NewString() + "/ask-question"

		w := env.do(http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeValidation, decodeError(t, w).Code)

		w = env.do(http.MethodPost, path, askQuestionRequest{Question: strings.Repeat("a", 301)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(http.MethodPost, "/stories/not-a-uuid/ask-question", askQuestionRequest{Question: "Who?"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeBadRequest, decodeError(t, w).Code)
	})
}

func TestGenerateName(t *testing.T) {
	env := newTestEnv(t, nil)
	storyID := uuid.New()
	env.expectStory(storyID)
	env.client.On("Complete", mock.Anything, promptHasPrefix("Based on the story world")).Return("  Lira Thornveil\n", nil).Once()

	w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/generate-name", generateRequest{Request: "a scout"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Lira Thornveil"}`, w.Body.String())
}

func TestGenerateCharacter(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.expectStory(storyID)
		env.client.On("Complete", mock.Anything, promptHasPrefix("Based on the story world")).Return("Lira", nil).Once()
		env.client.On("Complete", mock.Anything, promptHasPrefix("Create detailed attributes")).Return("```json\n"+liraJSON+"\n```", nil).Once()
		env.characters.On("Create", mock.Anything, mock.AnythingOfType("*models.Character")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Character).ID = uuid.New()
		}).Return(nil).Once()
		env.publisher.On("PublishCharacterGenerated", mock.Anything, mock.Anything).Return(nil).Once()

		w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/generate-character", generateRequest{Request: "a scout"})
		require.Equal(t, http.StatusCreated, w.Code)

		var character models.Character
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &character))
		assert.Equal(t, storyID, character.StoryID)
		assert.Equal(t, "Lira", character.Name)
		assert.Equal(t, []string{"kind", "watchful"}, character.PersonalityTraits.List)
	})

	t.Run("malformed output", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.expectStory(storyID)
		env.client.On("Complete", mock.Anything, promptHasPrefix("Based on the story world")).Return("Lira", nil).Once()
		env.client.On("Complete", mock.Anything, promptHasPrefix("Create detailed attributes")).Return("nope", nil).Once()
		env.client.On("Complete", mock.Anything, promptHasPrefix("Create a valid JSON object")).Return("still nope", nil).Once()

		w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/generate-character", generateRequest{Request: "a scout"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, models.ErrCodeGenerationFailed, decodeError(t, w).Code)
		env.characters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.expectStory(storyID)
		env.client.On("Complete", mock.Anything, promptHasPrefix("Based on the story world")).Return("", errTransient).Once()

		w := env.do(http.MethodPost, "/stories/"+storyID.String()+"/generate-character", generateRequest{Request: "a scout"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, models.ErrCodeAIUnavailable, decodeError(t, w).Code)
	})
}

func TestTalk(t *testing.T) {
	t.Run("persists by default", func(t *testing.T) {
		env := newTestEnv(t, nil)
		characterID := uuid.New()
		env.expectCharacter(characterID, models.TraitsFromList("kind", "watchful"))
		env.client.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "good, helpful, and friendly") && strings.Contains(p, `"Hello"`)
		})).Return("Well met, traveler.", nil).Once()

		var senders []models.Sender
		env.turns.On("AppendTurn", mock.Anything, mock.AnythingOfType("*models.ConversationTurn")).Run(func(args mock.Arguments) {
			turn := args.Get(1).(*models.ConversationTurn)
			turn.ID = uuid.New()
			senders = append(senders, turn.Sender)
		}).Return(nil).Twice()
		env.publisher.On("PublishConversationTurn", mock.Anything, mock.Anything).Return(nil).Once()

		w := env.do(http.MethodPost, "/characters/"+characterID.String()+"/talk", talkRequest{Message: "Hello"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"response":"Well met, traveler."}`, w.Body.String())
		assert.Equal(t, []models.Sender{models.SenderUser, models.SenderCharacter}, senders)
	})

	t.Run("persist false", func(t *testing.T) {
		env := newTestEnv(t, nil)
		characterID := uuid.New()
		env.expectCharacter(characterID, models.TraitsFromText("ruthless and cunning"))
		env.client.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "malicious, selfish, and suspicious")
		})).Return("Leave.", nil).Once()

		w := env.do(http.MethodPost, "/characters/"+characterID.String()+"/talk", talkRequest{Message: "Hello", Persist: models.BoolPtr(false)})
		require.Equal(t, http.StatusOK, w.Code)
		env.turns.AssertNotCalled(t, "AppendTurn", mock.Anything, mock.Anything)
	})

	t.Run("degraded reply is 200", func(t *testing.T) {
		env := newTestEnv(t, nil)
		characterID := uuid.New()
		env.expectCharacter(characterID, models.TraitsFromList("kind"))
		env.client.On("Complete", mock.Anything, mock.Anything).Return("", errTransient).Once()
		env.turns.On("AppendTurn", mock.Anything, mock.Anything).Return(nil).Twice()
		env.publisher.On("PublishConversationTurn", mock.Anything, mock.Anything).Return(nil).Once()

		w := env.do(http.MethodPost, "/characters/"+characterID.String()+"/talk", talkRequest{Message: "Hello"})
		require.Equal(t, http.StatusOK, w.Code)
		var resp talkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.Response, "Error while generating response:"))
	})

	t.Run("unknown character", func(t *testing.T) {
		env := newTestEnv(t, nil)
		characterID := uuid.New()
		env.characters.On("GetByID", mock.Anything, characterID).Return(nil, models.ErrNotFound).Once()

		w := env.do(http.MethodPost, "/characters/"+characterID.String()+"/talk", talkRequest{Message: "Hello"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing message", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(http.MethodPost, "/characters/"+uuid.NewString()+"/talk", `{"persist": true}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeValidation, decodeError(t, w).Code)
	})
}

func TestConversationListing(t *testing.T) {
	t.Run("filters by character and sender", func(t *testing.T) {
		env := newTestEnv(t, nil)
		characterID := uuid.New()
		env.turns.On("ListTurns", mock.Anything, mock.MatchedBy(func(f models.TurnFilter) bool {
			return f.CharacterID != nil && *f.CharacterID == characterID &&
				f.Sender != nil && *f.Sender == models.SenderUser &&
				f.Page == 2 && f.Size == 5
		})).Return([]*models.ConversationTurn{{ID: uuid.New(), CharacterID: characterID, Message: "Hello", Sender: models.SenderUser}}, int64(6), nil).Once()

		w := env.do(http.MethodGet, "/conversations?character_id="+characterID.String()+"&sender=user&page=2&page_size=5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.PaginatedResponse[models.ConversationTurn]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(6), resp.Total)
		assert.Equal(t, 2, resp.Page)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, models.SenderUser, resp.Data[0].Sender)
	})

	t.Run("unknown sender", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(http.MethodGet, "/conversations?sender=narrator", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeBadRequest, decodeError(t, w).Code)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.turns.On("ListTurns", mock.Anything, mock.Anything).Return(nil, int64(0), nil).Once()

		w := env.do(http.MethodGet, "/conversations", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[],"page":1,"page_size":20,"total":0}`, w.Body.String())
	})

	t.Run("character conversation for unknown character", func(t *testing.T) {
		env := newTestEnv(t, nil)
		characterID := uuid.New()
		env.characters.On("GetByID", mock.Anything, characterID).Return(nil, models.ErrNotFound).Once()

		w := env.do(http.MethodGet, "/characters/"+characterID.String()+"/conversation", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStoryCRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	storyID := uuid.New()
	env.stories.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Story) bool { return s.Title == "Eldra" })).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Story).ID = storyID }).Return(nil).Once()
	env.stories.On("Delete", mock.Anything, storyID).Return(nil).Once()
	env.stories.On("List", mock.Anything, models.StoryFilter{Search: "eld", Page: 1, Size: 20}).
		Return([]*models.Story{{ID: storyID, Title: "Eldra"}}, int64(1), nil).Once()

	w := env.do(http.MethodPost, "/stories", storyRequest{Title: "Eldra", Content: eldraContent})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), storyID.String())

	w = env.do(http.MethodGet, "/stories?search=eld", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = env.do(http.MethodDelete, "/stories/"+storyID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodPost, "/stories", `{"title": "", "content": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCharacterCRUD(t *testing.T) {
	t.Run("create requires story", func(t *testing.T) {
		env := newTestEnv(t, nil)
		w := env.do(http.MethodPost, "/characters", json.RawMessage(liraJSON))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeValidation, decodeError(t, w).Code)
	})

	t.Run("create for unknown story", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.characters.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("story %s: %w", storyID, models.ErrNotFound)).Once()

		body := `{"story": "` + storyID.String() + `", ` + strings.TrimPrefix(liraJSON, "{")
		w := env.do(http.MethodPost, "/characters", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list filters", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.characters.On("List", mock.Anything, mock.MatchedBy(func(f models.CharacterFilter) bool {
			return f.StoryID != nil && *f.StoryID == storyID && f.Faction == "Sylvan Wardens" && f.Search == "li"
		})).Return([]*models.Character{}, int64(0), nil).Once()

		w := env.do(http.MethodGet, "/characters?story_id="+storyID.String()+"&faction=Sylvan%20Wardens&search=li", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodGet, "/characters?story_id=bad", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("story characters for unknown story", func(t *testing.T) {
		env := newTestEnv(t, nil)
		storyID := uuid.New()
		env.stories.On("GetByID", mock.Anything, storyID).Return(nil, models.ErrNotFound).Once()

		w := env.do(http.MethodGet, "/stories/"+storyID.String()+"/characters", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		env := newTestEnv(t, nil)
		id := uuid.New()
		env.characters.On("Delete", mock.Anything, id).Return(errors.New("connection reset")).Once()

		w := env.do(http.MethodDelete, "/characters/"+id.String(), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, models.ErrCodeInternal, decodeError(t, w).Code)
	})
}

// exhaustedStore отказывает любому запросу.
type exhaustedStore struct{}

func (exhaustedStore) Limit(string, *gin.Context) rateli.Info {
	return rateli.Info{RateLimited: true, ResetTime: time.Now().Add(time.Minute)}
}

func TestRateLimitOnlyOnLLMRoutes(t *testing.T) {
	env := newTestEnv(t, exhaustedStore{})
	env.stories.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), nil).Once()

	w := env.do(http.MethodPost, "/stories/"+uuid.NewString()+"/ask-question", askQuestionRequest{Question: "Who?"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, models.ErrCodeRateLimited, decodeError(t, w).Code)

	w = env.do(http.MethodPost, "/characters/"+uuid.NewString()+"/talk", talkRequest{Message: "Hi"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.do(http.MethodGet, "/characters/"+uuid.NewString()+"/talk/ws", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "websocket upgrade must be limited too")

	w = env.do(http.MethodGet, "/stories", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorResponseFor(t *testing.T) {
	contentErr := fmt.Errorf("%w: %w: empty response", ai.ErrAIGenerationFailed, ai.ErrContent)
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: %s", models.ErrStoryNotFound, uuid.Nil), http.StatusNotFound, models.ErrCodeNotFound},
		{models.ErrCharacterNotFound, http.StatusNotFound, models.ErrCodeNotFound},
		{fmt.Errorf("%w: title is required", models.ErrValidation), http.StatusBadRequest, models.ErrCodeValidation},
		{models.ErrInvalidInput, http.StatusBadRequest, models.ErrCodeBadRequest},
		{fmt.Errorf("generate details: %w", models.ErrMalformedGeneration), http.StatusInternalServerError, models.ErrCodeGenerationFailed},
		{errTransient, http.StatusServiceUnavailable, models.ErrCodeAIUnavailable},
		{contentErr, http.StatusBadGateway, models.ErrCodeGenerationFailed},
		{errors.New("boom"), http.StatusInternalServerError, models.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, resp := errorResponseFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}
