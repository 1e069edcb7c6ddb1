package worldmodel

import "fmt"

const (
	summaryErrorPrefix = "Error during summary generation"
	answerErrorPrefix  = "Error while answering the question"
)

func summaryPrompt(storyText string) string {
	return fmt.Sprintf("Analyze this story and create a detailed summary with key elements such as world, factions, "+
		"cultures, history, and other important details that will help in character generation:\n\n%s", storyText)
}

func questionPrompt(storyText, question string) string {
	return fmt.Sprintf("Story:\n\n%s\n\nQuestion: %s", storyText, question)
}
