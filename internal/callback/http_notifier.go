package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"honeypot-api/internal/domain"
)

// finalResultPayload es el formato camelCase que espera el endpoint de
// evaluación.
type finalResultPayload struct {
	SessionID              string              `json:"sessionId"`
	ScamDetected           bool                `json:"scamDetected"`
	TotalMessagesExchanged int                 `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intelligencePayload `json:"extractedIntelligence"`
	AgentNotes             string              `json:"agentNotes"`
}

type intelligencePayload struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// HTTPNotifier implementa Notifier con un POST JSON al endpoint configurado.
type HTTPNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPNotifier construye un notifier con timeout corto: el callback no
// debe demorar la remoción de sesiones.
func NewHTTPNotifier(url string, logger *zap.Logger) *HTTPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

func (n *HTTPNotifier) SendFinalResult(ctx context.Context, report domain.FinalReport) error {
	payload := finalResultPayload{
		SessionID:              report.SessionID,
		ScamDetected:           report.ScamDetected,
		TotalMessagesExchanged: report.TotalMessages,
		ExtractedIntelligence: intelligencePayload{
			BankAccounts:       emptyIfNil(report.Intelligence.BankAccounts),
			UPIIDs:             emptyIfNil(report.Intelligence.UPIIDs),
			PhishingLinks:      emptyIfNil(report.Intelligence.PhishingURLs),
			PhoneNumbers:       emptyIfNil(report.Intelligence.PhoneNumbers),
			SuspiciousKeywords: []string{},
		},
		AgentNotes: report.AgentNotes,
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("callback http error: status=%d", resp.StatusCode)
	}

	n.logger.Info("final result callback delivered",
		zap.String("session_id", report.SessionID),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var _ Notifier = (*HTTPNotifier)(nil)
