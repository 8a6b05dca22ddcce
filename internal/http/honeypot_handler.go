package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"honeypot-api/internal/domain"
	"honeypot-api/internal/service"
)

// HoneypotHandler mantiene dependencias para el endpoint principal.
type HoneypotHandler struct {
	logger     *zap.Logger
	engagement *service.EngagementService
}

// NewHoneypotHandler crea una instancia de HoneypotHandler.
func NewHoneypotHandler(logger *zap.Logger, engagement *service.EngagementService) *HoneypotHandler {
	return &HoneypotHandler{logger: logger, engagement: engagement}
}

type inboundMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text" binding:"required"`
	Timestamp int64  `json:"timestamp"`
}

type honeypotRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             inboundMessage   `json:"message" binding:"required"`
	ConversationHistory []inboundMessage `json:"conversationHistory"`
	Metadata            struct {
		Channel  string `json:"channel"`
		Language string `json:"language"`
		Locale   string `json:"locale"`
	} `json:"metadata"`
}

type intelligenceResponse struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

type honeypotResponse struct {
	Status                string               `json:"status"`
	SessionID             string               `json:"sessionId"`
	Reply                 string               `json:"reply"`
	ScamDetected          bool                 `json:"scamDetected"`
	Confidence            float64              `json:"confidence"`
	Reasoning             string               `json:"reasoning"`
	ExtractedIntelligence intelligenceResponse `json:"extractedIntelligence"`
	TotalMessages         int                  `json:"totalMessages"`
}

// Handle maneja POST /honeypot: un turno de conversación con el presunto
// estafador. Sin sessionId explícito, la API key del caller decide la
// sesión (tracking implícito).
func (h *HoneypotHandler) Handle(c *gin.Context) {
	var req honeypotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid honeypot request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	history := make([]domain.ConversationMessage, 0, len(req.ConversationHistory))
	for _, m := range req.ConversationHistory {
		role := domain.RoleAgent
		if m.Sender == "scammer" {
			role = domain.RoleCounterparty
		}
		history = append(history, domain.ConversationMessage{Role: role, Content: m.Text})
	}

	callerIdentity := c.GetHeader("x-api-key")
	result, err := h.engagement.HandleMessage(c.Request.Context(), req.SessionID, callerIdentity, req.Message.Text, history)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message cannot be empty"})
			return
		}
		h.logger.Error("honeypot turn failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := "success"
	if result.Ended {
		status = "ended"
	}

	c.JSON(http.StatusOK, honeypotResponse{
		Status:       status,
		SessionID:    result.SessionID,
		Reply:        result.Reply,
		ScamDetected: result.Detection.IsScam,
		Confidence:   result.Detection.Confidence,
		Reasoning:    result.Detection.Reasoning,
		ExtractedIntelligence: intelligenceResponse{
			BankAccounts:       emptyIfNil(result.Intelligence.BankAccounts),
			UPIIDs:             emptyIfNil(result.Intelligence.UPIIDs),
			PhishingLinks:      emptyIfNil(result.Intelligence.PhishingURLs),
			PhoneNumbers:       emptyIfNil(result.Intelligence.PhoneNumbers),
			SuspiciousKeywords: []string{},
		},
		TotalMessages: result.TotalMessages,
	})
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
