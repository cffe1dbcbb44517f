package openai

import (
	"github.com/poiesic/quaerit/core"
	"github.com/tmc/langchaingo/llms"
)

// answerSystemPrompt anchors the generator to the retrieved document
// context instead of its parametric knowledge.
const answerSystemPrompt = `You are a helpful assistant that answers based on provided policy documents.`

// buildAnswerMessages assembles the chat transcript sent to the model:
// the system prompt, the prior conversation window, the retrieved
// context as a system message, and finally the current question.
func buildAnswerMessages(history core.Window, question, docContext string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+3)

	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeSystem,
		Parts: []llms.ContentPart{llms.TextPart(answerSystemPrompt)},
	})

	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == core.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(turn.Content)},
		})
	}

	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeSystem,
		Parts: []llms.ContentPart{llms.TextPart("CONTEXT:\n" + docContext)},
	})

	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(question)},
	})

	return messages
}
