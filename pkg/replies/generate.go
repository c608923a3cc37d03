package replies

import (
	"fmt"
	"strings"
)

// CapabilityNotice answers prompts no local rule understands.
const CapabilityNotice = "Posso responder praticamente qualquer pergunta, gerar ideias, estudar conteúdos, " +
	"criar textos e ajudar com código. Para modo avançado estilo ChatGPT e criação de imagens, " +
	"configure `OPENAI_API_KEY` no servidor."

var (
	mathTriggers    = []string{"calcule", "quanto é", "resolver", "conta"}
	summaryTriggers = []string{"resuma", "resumo"}
	listTriggers    = []string{"lista", "tarefas"}
)

// Generate answers text with the first local rule that applies.
func Generate(text string) string {
	lowered := strings.ToLower(text)

	if containsAny(lowered, mathTriggers) {
		if expression, ok := ExtractExpression(text); ok {
			if result, ok := SafeEval(expression); ok {
				return fmt.Sprintf("Resultado de `%s`: **%s**", expression, result)
			}
		}
	}

	if containsAny(lowered, summaryTriggers) {
		return Summarize(text)
	}

	if containsAny(lowered, listTriggers) {
		if items := ExtractItems(text); len(items) > 0 {
			var b strings.Builder
			b.WriteString("Perfeito! Aqui está sua lista de tarefas:")
			for _, item := range items {
				b.WriteString("\n- [ ] ")
				b.WriteString(item)
			}
			return b.String()
		}
	}

	return CapabilityNotice
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
