package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"honeypot-api/internal/domain"
	"honeypot-api/internal/llm"
)

const extractorInstructions = `You are an intelligence extraction agent specialized in identifying scam indicators.

Your expertise includes:
- Extracting UPI IDs (format: user@upi)
- Identifying phone numbers (especially Indian format)
- Finding URLs and potentially malicious links
- Detecting bank account numbers

Be precise and only extract valid, complete indicators. Ignore partial or invalid patterns.`

var (
	upiPattern      = regexp.MustCompile(`(?i)\b[\w][\w.\-]{2,}@(?:upi|paytm|phonepe|gpay|googlepay|bhim|amazonpay|whatsapp|okaxis|oksbi|okicici|okhdfcbank|axl|apl|yapl|ibl|icici|airtel|freecharge|mobikwik)\b`)
	basicUPIPattern = regexp.MustCompile(`(?i)\b[\w][\w.\-]{2,}@upi\b`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{10}\b`),
		regexp.MustCompile(`\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
		regexp.MustCompile(`\b\d{5}[-.\s]\d{5}\b`),
		regexp.MustCompile(`\b\d{10}\b`),
	}

	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile("(?i)https?://[^\\s<>\"'{}|\\\\^`\\[\\]]+"),
		regexp.MustCompile(`(?i)www\.[a-zA-Z0-9-]+\.[a-zA-Z]{2,}[^\s]*`),
		regexp.MustCompile(`(?i)\b[a-zA-Z0-9-]+\.(?:com|net|org|info|biz|io|co|in|xyz|online|site|shop|app|link|click|ltd|tech|store|live|pro|dev|me|tv|us|uk|ca|au|de|fr|jp|cn|ru)\b[^\s]*`),
	}

	bankContextPattern = regexp.MustCompile(`(?i)(?:bank\s*(?:account|acc)|account|acct|acc)\s*(?:no|number|num|#)?\s*[:\-.]?\s*(\d{9,18})`)
	bankDigitsPattern  = regexp.MustCompile(`\b\d{9,18}\b`)
	ifscPattern        = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	nonPhoneChars        = regexp.MustCompile(`[^\d+]`)
	trailingPunctPattern = regexp.MustCompile(`[,;:!?.)]+$`)

	llmBankLine  = regexp.MustCompile(`\d{9,18}`)
	llmUPILine   = regexp.MustCompile(`(?i)[\w.\-]+@upi`)
	llmPhoneLine = regexp.MustCompile(`\+?\d{10,12}`)
	llmURLLine   = regexp.MustCompile(`https?://\S+`)
)

// Extractor saca indicadores de estafa del texto de un mensaje. La
// extracción por regex es pura y determinista; el fallback por LLM solo se
// usa cuando las regex no encuentran nada y está acotado por el contexto.
type Extractor struct {
	logger *zap.Logger
	llm    llm.Client
}

// NewExtractor crea un extractor. El cliente LLM es opcional; sin él solo
// se usa la extracción por regex.
func NewExtractor(logger *zap.Logger, client llm.Client) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger, llm: client}
}

// Extract corre la extracción por regex sobre el texto. Tolera texto
// arbitrario, incluido el string vacío, y devuelve valores normalizados
// deduplicados en orden estable.
func (e *Extractor) Extract(text string) domain.Indicators {
	return domain.Indicators{
		BankAccounts: extractBankAccounts(text),
		UPIIDs:       extractUPIIDs(text),
		PhoneNumbers: extractPhoneNumbers(text),
		PhishingURLs: extractURLs(text),
	}
}

// ExtractWithFallback intenta regex primero y, si no encuentra nada, le
// pide al LLM una pasada de extracción. Un fallo del LLM degrada al
// resultado regex vacío sin error.
func (e *Extractor) ExtractWithFallback(ctx context.Context, text string) domain.Indicators {
	result := e.Extract(text)
	if !result.Empty() || e.llm == nil {
		return result
	}

	prompt := extractorInstructions + `

Extract scam indicators from the text.

Text: "` + text + `"

Return ONLY valid indicators in this format:
bank_accounts: [list]
upi_ids: [list]
phone_numbers: [list]
phishing_urls: [list]

If none found, use empty lists.`

	response, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("llm extraction fallback failed", zap.Error(err))
		return result
	}

	for _, line := range strings.Split(response, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "bank_accounts:"):
			result.BankAccounts = dedupeSorted(llmBankLine.FindAllString(line, -1))
		case strings.Contains(lower, "upi_ids:"):
			values := llmUPILine.FindAllString(line, -1)
			for i, v := range values {
				values[i] = strings.ToLower(v)
			}
			result.UPIIDs = dedupeSorted(values)
		case strings.Contains(lower, "phone_numbers:"):
			result.PhoneNumbers = dedupeSorted(llmPhoneLine.FindAllString(line, -1))
		case strings.Contains(lower, "phishing_urls:"):
			result.PhishingURLs = dedupeSorted(llmURLLine.FindAllString(line, -1))
		}
	}
	return result
}

func extractUPIIDs(text string) []string {
	matches := upiPattern.FindAllString(text, -1)
	matches = append(matches, basicUPIPattern.FindAllString(text, -1)...)

	var valid []string
	for _, m := range matches {
		m = strings.ToLower(strings.TrimSpace(m))
		at := strings.Index(m, "@")
		if at >= 3 {
			valid = append(valid, m)
		}
	}
	return dedupeSorted(valid)
}

func extractPhoneNumbers(text string) []string {
	var matches []string
	for _, p := range phonePatterns {
		matches = append(matches, p.FindAllString(text, -1)...)
	}

	seen := make(map[string]struct{})
	var valid []string
	for _, m := range matches {
		clean := nonPhoneChars.ReplaceAllString(m, "")
		digits := strings.TrimPrefix(clean, "+")
		if len(digits) < 10 {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		if allSameRunes(digits) {
			continue
		}

		var normalized string
		switch {
		case strings.HasPrefix(clean, "+"):
			normalized = clean
		case strings.HasPrefix(clean, "91") && len(clean) == 12:
			normalized = "+" + clean
		case strings.HasPrefix(clean, "0") && len(clean) == 11:
			normalized = "+91" + clean[1:]
		case len(clean) == 10:
			normalized = "+91" + clean
		case len(clean) == 11 && strings.HasPrefix(clean, "1"):
			normalized = "+" + clean
		default:
			normalized = "+" + clean
		}

		seen[clean] = struct{}{}
		valid = append(valid, normalized)
	}
	return dedupeSorted(valid)
}

func extractURLs(text string) []string {
	var matches []string
	for _, p := range urlPatterns {
		matches = append(matches, p.FindAllString(text, -1)...)
	}

	var valid []string
	for _, url := range matches {
		url = strings.TrimSpace(url)
		if len(url) < 4 {
			continue
		}
		lower := strings.ToLower(url)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "ftp://") {
			url = "http://" + url
		}
		url = trailingPunctPattern.ReplaceAllString(url, "")
		if strings.Contains(url, ".") && len(url) > 4 {
			valid = append(valid, url)
		}
	}
	return dedupeSorted(valid)
}

func extractBankAccounts(text string) []string {
	var raw []string
	for _, groups := range bankContextPattern.FindAllStringSubmatch(text, -1) {
		raw = append(raw, groups[1])
	}
	raw = append(raw, bankDigitsPattern.FindAllString(text, -1)...)
	raw = append(raw, ifscPattern.FindAllString(text, -1)...)

	var valid []string
	for _, acc := range raw {
		acc = strings.TrimSpace(acc)
		switch {
		case ifscPattern.MatchString(acc) && len(acc) == 11:
			valid = append(valid, "IFSC: "+acc)
		case isDigits(acc) && len(acc) >= 9 && len(acc) <= 18 && !allSameRunes(acc):
			valid = append(valid, "Account: "+acc)
		}
	}
	return dedupeSorted(valid)
}

func dedupeSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allSameRunes(s string) bool {
	if s == "" {
		return true
	}
	first := rune(s[0])
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}
