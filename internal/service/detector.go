package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"honeypot-api/internal/domain"
	"honeypot-api/internal/llm"
)

const detectorInstructions = `You are a scam detection expert agent. Your role is to analyze messages and determine if they are scams.

Your expertise includes:
- Identifying phishing attempts and social engineering tactics
- Recognizing urgency manipulation and authority impersonation
- Detecting requests for sensitive information (OTP, passwords, bank details)
- Spotting suspicious patterns in financial transaction requests

Analyze each message objectively and provide clear, evidence-based reasoning.`

// Pesos de keywords para el score heurístico inicial.
var scamKeywords = map[string]int{
	"verify":            2,
	"confirm":           2,
	"update":            2,
	"urgent":            3,
	"immediate":         3,
	"account blocked":   4,
	"account suspended": 4,
	"verify identity":   3,
	"confirm password":  4,
	"click here":        2,
	"click link":        2,
	"send money":        4,
	"transfer funds":    4,
	"pay now":           3,
	"pay immediately":   4,
	"upi":               2,
	"bank account":      2,
	"credit card":       2,
	"debit card":        2,
	"otp":               3,
	"one-time password": 3,
	"security code":     3,
	"cvv":               3,
	"atm pin":           3,
	"password":          2,
	"login":             2,
	"confirm details":   3,
	"unusual activity":  2,
	"suspicious":        2,
	"claim reward":      3,
	"won":               2,
	"prize":             2,
	"lottery":           3,
	"refund":            2,
	"tax return":        2,
	"inheritance":       3,
	"impersonate":       4,
	"bank officer":      2,
	"government":        2,
	"police":            2,
	"amazon":            1,
	"google":            1,
	"microsoft":         1,
	"apple":             1,
}

// ScamDetector combina un score heurístico por keywords con una
// clasificación del LLM. El LLM es opaco y puede fallar: en ese caso el
// veredicto degrada al score heurístico contra el umbral configurado.
type ScamDetector struct {
	logger    *zap.Logger
	llm       llm.Client
	threshold float64
}

// NewScamDetector crea un detector con el umbral de confianza dado.
func NewScamDetector(logger *zap.Logger, client llm.Client, threshold float64) *ScamDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = 0.5
	}
	return &ScamDetector{logger: logger, llm: client, threshold: threshold}
}

// KeywordScore calcula el score inicial 0..1 por keywords ponderadas,
// normalizado por la suma total de pesos.
func KeywordScore(message string) float64 {
	lower := strings.ToLower(message)
	total := 0
	maxPossible := 0
	for keyword, weight := range scamKeywords {
		maxPossible += weight
		if strings.Contains(lower, keyword) {
			total += weight
		}
	}
	if maxPossible == 0 {
		return 0
	}
	score := float64(total) / float64(maxPossible)
	if score > 1 {
		score = 1
	}
	return score
}

// Detect clasifica un mensaje. Nunca devuelve error: el fallo del LLM se
// absorbe con el veredicto heurístico.
func (d *ScamDetector) Detect(ctx context.Context, message string) domain.Detection {
	score := KeywordScore(message)

	if d.llm == nil {
		return d.heuristicVerdict(message, score)
	}

	det, err := d.classifyWithLLM(ctx, message, score)
	if err != nil {
		d.logger.Warn("llm classification failed, falling back to keyword score", zap.Error(err))
		return d.heuristicVerdict(message, score)
	}
	return det
}

func (d *ScamDetector) heuristicVerdict(message string, score float64) domain.Detection {
	return domain.Detection{
		IsScam:     score >= d.threshold,
		Confidence: score,
		Reasoning:  fmt.Sprintf("keyword heuristic score %.2f", score),
	}
}

func (d *ScamDetector) classifyWithLLM(ctx context.Context, message string, keywordScore float64) (domain.Detection, error) {
	prompt := detectorInstructions + fmt.Sprintf(`

Analyze this message and determine if it's a scam.

Message: "%s"

Provide your analysis in this exact format:
1. Is it a scam? (YES or NO)
2. Confidence (0.0 to 1.0, where 1.0 is definitely a scam)
3. Reasoning (2-3 sentences explaining why)

Context:
- Keyword score: %.2f
- Be conservative: only mark as scam if there's clear evidence
- Consider urgency, requests for sensitive info, impersonation
- Return ONLY the three lines, nothing else
`, message, keywordScore)

	response, err := d.llm.Generate(ctx, prompt)
	if err != nil {
		return domain.Detection{}, err
	}

	// Parsing tolerante: cada línea que falte degrada a un default sano.
	lines := strings.Split(strings.TrimSpace(response), "\n")
	det := domain.Detection{
		Confidence: keywordScore,
		Reasoning:  message,
	}
	if len(lines) > 0 {
		det.IsScam = strings.Contains(strings.ToUpper(lines[0]), "YES")
	}
	if len(lines) > 1 {
		parts := strings.Split(lines[1], ":")
		if conf, err := strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64); err == nil {
			det.Confidence = conf
		}
	}
	if len(lines) > 2 {
		if idx := strings.Index(lines[2], ":"); idx >= 0 {
			det.Reasoning = strings.TrimSpace(lines[2][idx+1:])
		} else {
			det.Reasoning = strings.TrimSpace(lines[2])
		}
	}

	if det.Confidence < 0 {
		det.Confidence = 0
	}
	if det.Confidence > 1 {
		det.Confidence = 1
	}
	return det, nil
}
