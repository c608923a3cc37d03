package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "<p>Resultado de <code>2+2</code>: <strong>4</strong></p>", renderMarkdown("Resultado de `2+2`: **4**"))
	assert.Empty(t, renderMarkdown("   "))
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	out := renderMarkdown("oi <script>alert(1)</script> [x](javascript:alert(1))")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, `href="javascript:`)
}

func TestRenderMarkdownTaskList(t *testing.T) {
	out := renderMarkdown("Perfeito! Aqui está sua lista de tarefas:\n- [ ] estudar\n- [ ] publicar")
	assert.Contains(t, out, "<li>")
	assert.Contains(t, out, "estudar")
}
