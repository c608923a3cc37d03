package chat

// QuickAction is a predefined prompt offered to the user.
type QuickAction struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

var QuickActions = []QuickAction{
	{Label: "Calcular", Prompt: "Calcule 12 * (3 + 4)"},
	{Label: "Resumir", Prompt: "Resuma: "},
	{Label: "Lista de tarefas", Prompt: "Crie uma lista: estudar Go, revisar código, publicar no github"},
	{Label: "Desenhar", Prompt: "Desenhe um astronauta tocando violão na lua"},
}
