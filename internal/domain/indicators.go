package domain

import "sort"

// Indicators agrupa los artefactos extraídos de los mensajes, por tipo.
// Los valores llegan ya normalizados desde el extractor; la sesión solo
// hace unión deduplicada sobre ellos.
type Indicators struct {
	BankAccounts []string `json:"bank_accounts"`
	UPIIDs       []string `json:"upi_ids"`
	PhoneNumbers []string `json:"phone_numbers"`
	PhishingURLs []string `json:"phishing_urls"`
}

// Empty indica si no hay ningún indicador en ningún tipo.
func (in Indicators) Empty() bool {
	return len(in.BankAccounts) == 0 &&
		len(in.UPIIDs) == 0 &&
		len(in.PhoneNumbers) == 0 &&
		len(in.PhishingURLs) == 0
}

// Total devuelve la cantidad de indicadores acumulados entre todos los tipos.
func (in Indicators) Total() int {
	return len(in.BankAccounts) + len(in.UPIIDs) + len(in.PhoneNumbers) + len(in.PhishingURLs)
}

// Union devuelve la unión deduplicada por tipo, en orden estable.
func (in Indicators) Union(other Indicators) Indicators {
	return Indicators{
		BankAccounts: unionSorted(in.BankAccounts, other.BankAccounts),
		UPIIDs:       unionSorted(in.UPIIDs, other.UPIIDs),
		PhoneNumbers: unionSorted(in.PhoneNumbers, other.PhoneNumbers),
		PhishingURLs: unionSorted(in.PhishingURLs, other.PhishingURLs),
	}
}

func unionSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
