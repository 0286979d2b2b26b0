package conversation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/conversation"
	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeEngine struct {
	processFn func(ctx context.Context, req conversation.TurnRequest, profile *conversation.UserProfile, flow *conversation.ConversationFlow) ([]conversation.Reply, error)
}

func (f *fakeEngine) ProcessTurn(ctx context.Context, req conversation.TurnRequest, profile *conversation.UserProfile, flow *conversation.ConversationFlow) ([]conversation.Reply, error) {
	return f.processFn(ctx, req, profile, flow)
}

type memoryStore struct {
	profiles   map[string]*conversation.UserProfile
	flows      map[string]*conversation.ConversationFlow
	savedOrder []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles: map[string]*conversation.UserProfile{},
		flows:    map[string]*conversation.ConversationFlow{},
	}
}

func (m *memoryStore) LoadProfile(ctx context.Context, userID string) (*conversation.UserProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return &conversation.UserProfile{}, nil
}

func (m *memoryStore) SaveProfile(ctx context.Context, userID string, profile *conversation.UserProfile) error {
	m.profiles[userID] = profile
	m.savedOrder = append(m.savedOrder, "profile")
	return nil
}

func (m *memoryStore) LoadFlow(ctx context.Context, conversationID string) (*conversation.ConversationFlow, error) {
	if f, ok := m.flows[conversationID]; ok {
		return f, nil
	}
	return conversation.NewFlow(), nil
}

func (m *memoryStore) SaveFlow(ctx context.Context, conversationID string, flow *conversation.ConversationFlow) error {
	m.flows[conversationID] = flow
	m.savedOrder = append(m.savedOrder, "flow")
	return nil
}

func postTurn(t *testing.T, h *conversation.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/turns", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.ProcessTurn(c)
	return w
}

func TestHandler_ProcessTurn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	apperror.Init()

	t.Run("happy path persists profile before flow", func(t *testing.T) {
		store := newMemoryStore()
		engine := &fakeEngine{
			processFn: func(ctx context.Context, req conversation.TurnRequest, profile *conversation.UserProfile, flow *conversation.ConversationFlow) ([]conversation.Reply, error) {
				assert.Equal(t, "hello", req.Text)
				flow.PromptedForEmployeeID = true
				return []conversation.Reply{{Kind: conversation.ReplyText, Text: conversation.MsgAskEmployeeID}}, nil
			},
		}
		h := conversation.NewHandler(engine, store)

		w := postTurn(t, h, `{"conversation_id":"c1","user_id":"u1","text":"hello"}`)

		assert.Equal(t, http.StatusOK, w.Code)

		var envelope struct {
			Ok   bool                      `json:"ok"`
			Data conversation.TurnResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.True(t, envelope.Ok)
		assert.Len(t, envelope.Data.Replies, 1)
		assert.Equal(t, conversation.MsgAskEmployeeID, envelope.Data.Replies[0].Text)

		assert.Equal(t, []string{"profile", "flow"}, store.savedOrder)
		assert.True(t, store.flows["c1"].PromptedForEmployeeID)
	})

	t.Run("missing conversation id fails validation", func(t *testing.T) {
		h := conversation.NewHandler(&fakeEngine{}, newMemoryStore())

		w := postTurn(t, h, `{"user_id":"u1","text":"hello"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"ok":false`)
	})

	t.Run("turn without text or selection is rejected", func(t *testing.T) {
		h := conversation.NewHandler(&fakeEngine{}, newMemoryStore())

		w := postTurn(t, h, `{"conversation_id":"c1","user_id":"u1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("engine error does not persist state", func(t *testing.T) {
		store := newMemoryStore()
		engine := &fakeEngine{
			processFn: func(ctx context.Context, req conversation.TurnRequest, profile *conversation.UserProfile, flow *conversation.ConversationFlow) ([]conversation.Reply, error) {
				return nil, assert.AnError
			},
		}
		h := conversation.NewHandler(engine, store)

		w := postTurn(t, h, `{"conversation_id":"c1","user_id":"u1","text":"hello"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, store.savedOrder)
	})

	t.Run("selection-only turn binds", func(t *testing.T) {
		store := newMemoryStore()
		engine := &fakeEngine{
			processFn: func(ctx context.Context, req conversation.TurnRequest, profile *conversation.UserProfile, flow *conversation.ConversationFlow) ([]conversation.Reply, error) {
				assert.NotNil(t, req.Selection)
				assert.Equal(t, "2026-12-31", req.Selection.Date)
				return []conversation.Reply{{Kind: conversation.ReplyText, Text: conversation.MsgSubmitted}}, nil
			},
		}
		h := conversation.NewHandler(engine, store)

		w := postTurn(t, h, `{"conversation_id":"c1","user_id":"u1","selection":{"date":"2026-12-31","name":"New Year's Eve"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
