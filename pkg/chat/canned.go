package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CannedRule maps any of its keywords to a fixed reply.
type CannedRule struct {
	Keywords []string `json:"keywords"`
	Reply    string   `json:"reply"`
}

// CannedRules is checked in order when the server cannot be reached. The
// web page receives the same table so both clients answer alike.
var CannedRules = []CannedRule{
	{
		Keywords: []string{"desenhe", "imagem"},
		Reply:    "Não consigo gerar imagens sem conexão com o servidor. Tente novamente em instantes.",
	},
	{
		Keywords: []string{"olá", "ola", "oi", "bom dia", "boa tarde", "boa noite"},
		Reply:    "Olá! Estou sem conexão com o servidor agora, mas já já volto a responder normalmente.",
	},
	{
		Keywords: []string{"calcule", "quanto é", "conta"},
		Reply:    "Sem conexão não consigo fazer contas. Reenvie o cálculo quando o servidor voltar.",
	},
	{
		Keywords: []string{"resuma", "resumo"},
		Reply:    "Para resumir textos preciso do servidor. Guarde o texto e envie novamente em breve.",
	},
	{
		Keywords: []string{"lista", "tarefas"},
		Reply:    "Anote suas tarefas por enquanto: assim que a conexão voltar eu organizo tudo em uma lista.",
	},
	{
		Keywords: []string{"obrigado", "obrigada", "valeu"},
		Reply:    "Por nada! Assim que a conexão voltar continuamos.",
	},
}

// OfflineReply is used when no rule matches.
const OfflineReply = "Estou offline no momento. Verifique sua conexão e tente novamente."

// CannedReply returns the fixed reply for the first rule whose keyword
// appears in text.
func CannedReply(text string) string {
	lowered := strings.ToLower(text)
	for _, rule := range CannedRules {
		for _, kw := range rule.Keywords {
			if containsWord(lowered, kw) {
				return rule.Reply
			}
		}
	}
	return OfflineReply
}

// containsWord reports whether kw occurs in s delimited by non-letters, so
// that "oi" does not match inside "noite" or "foi".
func containsWord(s, kw string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		if !isLetterBefore(s, idx) && !isLetterAfter(s, end) {
			return true
		}
		start = idx + 1
	}
}

func isLetterBefore(s string, idx int) bool {
	if idx == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return unicode.IsLetter(r)
}

func isLetterAfter(s string, end int) bool {
	if end >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return unicode.IsLetter(r)
}
