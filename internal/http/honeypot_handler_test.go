package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"honeypot-api/internal/llm"
	"honeypot-api/internal/service"
	"honeypot-api/internal/session"
)

const testAPIKey = "test-api-key"

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func setupHoneypotRouter(limiter service.RequestRateLimiter, jwtSvc *service.JWTService) (*gin.Engine, *session.Store) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := session.NewStore(logger, 30*time.Minute, nil)
	detector := service.NewScamDetector(logger, &llm.MockClient{
		Response: "1. YES\n2. Confidence: 0.9\n3. Reasoning: payment request with urgency.",
	}, 0.5)
	persona := service.NewPersonaGenerator(logger, &llm.MockClient{Response: "Oh no, which account? 😟"})
	extractor := service.NewExtractor(logger, nil)
	engagement := service.NewEngagementService(logger, store, detector, persona, extractor, 10)

	honeypotH := NewHoneypotHandler(logger, engagement)
	adminH := NewAdminHandler(logger, store)
	return NewRouter(logger, testAPIKey, limiter, jwtSvc, honeypotH, adminH), store
}

func performRequest(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func honeypotBody(sessionID, text string) map[string]any {
	return map[string]any{
		"sessionId": sessionID,
		"message": map[string]any{
			"sender":    "scammer",
			"text":      text,
			"timestamp": time.Now().UnixMilli(),
		},
	}
}

func TestHoneypotHandler_AuthRequired(t *testing.T) {
	r, _ := setupHoneypotRouter(nil, nil)

	t.Run("sin api key", func(t *testing.T) {
		rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "hello"), nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("api key invalida", func(t *testing.T) {
		rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "hello"), map[string]string{
			"x-api-key": "wrong-key",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", rec.Code)
		}
	})
}

func TestHoneypotHandler_ScamTurn(t *testing.T) {
	r, _ := setupHoneypotRouter(nil, nil)

	rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "send money to abc@upi now"), map[string]string{
		"x-api-key": testAPIKey,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp honeypotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "success" || !resp.ScamDetected {
		t.Fatalf("expected detected scam turn, got %+v", resp)
	}
	if resp.SessionID == "" || resp.Reply == "" {
		t.Fatalf("expected session id and reply, got %+v", resp)
	}
	if len(resp.ExtractedIntelligence.UPIIDs) != 1 || resp.ExtractedIntelligence.UPIIDs[0] != "abc@upi" {
		t.Fatalf("expected extracted upi, got %+v", resp.ExtractedIntelligence)
	}
	if resp.TotalMessages != 2 {
		t.Fatalf("expected 2 messages, got %d", resp.TotalMessages)
	}
}

func TestHoneypotHandler_SessionContinuity(t *testing.T) {
	r, _ := setupHoneypotRouter(nil, nil)
	headers := map[string]string{"x-api-key": testAPIKey}

	rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "urgent, verify your account"), headers)
	var first honeypotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	// Segundo turno sin sessionId: la API key resuelve a la misma sesión.
	rec = performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "also call 9876543210"), headers)
	var second honeypotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("expected same session across turns, got %q then %q", first.SessionID, second.SessionID)
	}
	if len(second.ExtractedIntelligence.PhoneNumbers) != 1 {
		t.Fatalf("expected accumulated phone number, got %+v", second.ExtractedIntelligence)
	}
}

func TestHoneypotHandler_ExitEndsSession(t *testing.T) {
	r, _ := setupHoneypotRouter(nil, nil)
	headers := map[string]string{"x-api-key": testAPIKey}

	performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "send money now"), headers)
	rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "ok bye"), headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp honeypotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "ended" || resp.Reply == "" {
		t.Fatalf("expected ended status with farewell, got %+v", resp)
	}

	// El turno siguiente arranca una sesion nueva.
	rec = performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "hello again"), headers)
	var next honeypotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &next); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if next.SessionID == resp.SessionID {
		t.Fatalf("expected a fresh session after exit")
	}
}

func TestHoneypotHandler_BadRequests(t *testing.T) {
	r, _ := setupHoneypotRouter(nil, nil)
	headers := map[string]string{"x-api-key": testAPIKey}

	t.Run("body invalido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/honeypot", bytes.NewReader([]byte("not json")))
		req.Header.Set("x-api-key", testAPIKey)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("mensaje solo espacios", func(t *testing.T) {
		rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "   "), headers)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHoneypotHandler_RateLimited(t *testing.T) {
	r, _ := setupHoneypotRouter(denyAllLimiter{}, nil)

	rec := performRequest(r, http.MethodPost, "/honeypot", honeypotBody("", "hello"), map[string]string{
		"x-api-key": testAPIKey,
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
}

func TestHealthAndInfoEndpoints(t *testing.T) {
	r, _ := setupHoneypotRouter(nil, nil)

	if rec := performRequest(r, http.MethodGet, "/health", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from /health, got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodGet, "/", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from /, got %d", rec.Code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("sin jwt configurado responde 503", func(t *testing.T) {
		r, _ := setupHoneypotRouter(nil, service.NewJWTService("", 15*time.Minute))
		rec := performRequest(r, http.MethodGet, "/admin/sessions", nil, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
	})

	jwtSvc := service.NewJWTService("admin-secret", 15*time.Minute)
	token, err := jwtSvc.GenerateAccess("analyst-1")
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}

	t.Run("sin token responde 401", func(t *testing.T) {
		r, _ := setupHoneypotRouter(nil, jwtSvc)
		rec := performRequest(r, http.MethodGet, "/admin/sessions", nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("lista sesiones activas", func(t *testing.T) {
		r, store := setupHoneypotRouter(nil, jwtSvc)
		store.GetOrCreate("", "key-1")
		store.GetOrCreate("", "key-2")

		rec := performRequest(r, http.MethodGet, "/admin/sessions", nil, map[string]string{
			"Authorization": "Bearer " + token,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp struct {
			ActiveSessions int `json:"active_sessions"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp.ActiveSessions != 2 {
			t.Fatalf("expected 2 active sessions, got %d", resp.ActiveSessions)
		}
	})

	t.Run("end session con id desconocido devuelve null", func(t *testing.T) {
		r, _ := setupHoneypotRouter(nil, jwtSvc)
		rec := performRequest(r, http.MethodPost, "/admin/sessions/end", map[string]string{
			"sessionId": "missing",
		}, map[string]string{
			"Authorization": "Bearer " + token,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp["session"] != nil {
			t.Fatalf("expected null session, got %+v", resp["session"])
		}
	})

	t.Run("end session termina una sesion viva", func(t *testing.T) {
		r, store := setupHoneypotRouter(nil, jwtSvc)
		s, _ := store.GetOrCreate("", "key-1")

		rec := performRequest(r, http.MethodPost, "/admin/sessions/end", map[string]string{
			"sessionId": s.ID(),
		}, map[string]string{
			"Authorization": "Bearer " + token,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if store.ActiveCount() != 0 {
			t.Fatalf("expected session removed, %d still live", store.ActiveCount())
		}
	})
}
