package replies

import (
	"strings"
	"unicode/utf8"
)

const (
	summaryTooShort  = "Envie um texto maior e eu faço um resumo objetivo em tópicos."
	maxSummaryPhrase = 3
)

// Summarize keeps the first few sentences of text with whitespace collapsed.
func Summarize(text string) string {
	var (
		sentences []string
		current   []string
	)
	for _, word := range strings.Fields(text) {
		current = append(current, word)
		if strings.ContainsAny(word[len(word)-1:], ".!?") {
			sentences = append(sentences, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	if len(sentences) > maxSummaryPhrase {
		sentences = sentences[:maxSummaryPhrase]
	}

	summary := strings.TrimSpace(strings.Join(sentences, " "))
	if utf8.RuneCountInString(summary) < 25 {
		return summaryTooShort
	}
	return "Resumo rápido:\n" + summary
}

var (
	listKeywords   = []string{"lista", "tarefas", ":"}
	listSeparators = []string{",", ";", " e "}
)

// ExtractItems pulls task items out of a request such as
// "crie uma lista: estudar, revisar e publicar".
func ExtractItems(text string) []string {
	payload := text
	for _, kw := range listKeywords {
		if idx := indexFold(payload, kw); idx >= 0 {
			payload = payload[idx+len(kw):]
		}
	}

	for _, sep := range listSeparators {
		if !strings.Contains(payload, sep) {
			continue
		}
		var items []string
		for _, part := range strings.Split(payload, sep) {
			item := strings.Trim(part, " .")
			if utf8.RuneCountInString(item) > 2 {
				items = append(items, item)
			}
		}
		return items
	}

	if utf8.RuneCountInString(strings.TrimSpace(payload)) > 3 {
		return []string{strings.Trim(payload, " .")}
	}
	return nil
}

// indexFold is strings.Index ignoring ASCII case of substr.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
