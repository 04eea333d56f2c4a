package app

import "strings"

// Appended to every system prompt so replies stay proportionate to the
// user's message.
const concisenessInstruction = "\n\nIMPORTANT: Keep your responses concise and match the user's communication style. " +
	"For simple greetings or short questions, provide brief, friendly responses. " +
	"Only provide detailed explanations when the user asks complex questions or requests more information."

var simpleGreetings = []string{
	"hi", "hello", "hey", "hey there", "hi there", "greetings", "sup", "what's up",
}

func isSimpleGreeting(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	words := len(strings.Fields(lower))

	if words <= 3 {
		for _, greeting := range simpleGreetings {
			if lower == greeting {
				return true
			}
		}
	}
	if words <= 4 {
		for _, greeting := range simpleGreetings {
			if strings.HasPrefix(lower, greeting) {
				return true
			}
		}
	}
	return false
}

// buildSystemPrompt layers the retrieved memory context between the role's
// prompt and the conciseness instruction.
func buildSystemPrompt(rolePrompt, memoryContext string) string {
	prompt := rolePrompt
	if memoryContext != "" {
		prompt = prompt + "\n\n=== USER CONTEXT ===\n" + memoryContext +
			"\n\nUse this context to provide personalized and context-aware responses. " +
			"Reference relevant past conversations or user preferences when appropriate."
	}
	return prompt + concisenessInstruction
}

// conversationTitle derives a title from the first message: at most 50 words
// and 200 characters.
func conversationTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) > 50 {
		words = words[:50]
	}
	title := strings.Join(words, " ")
	if runes := []rune(title); len(runes) > 200 {
		title = string(runes[:197]) + "..."
	}
	if title == "" {
		return "New Conversation"
	}
	return title
}
