package generator

import (
	"fmt"
	"strings"
)

const noSpecificRequest = "No specific request"

func namePrompt(summary, request string, previous []string) string {
	return fmt.Sprintf(`Based on the story world below and the user's request, generate a unique name that fits the world for a character.

World summary:
%s

User request: %s

Previously generated names (avoid them): %s

Return only the character name, nothing else.`, summary, request, strings.Join(previous, ", "))
}

func detailsPrompt(name, summary, request string) string {
	if strings.TrimSpace(request) == "" {
		request = noSpecificRequest
	}
	return fmt.Sprintf(`Create detailed attributes for the character "%s" that are consistent with the story world.

World summary:
%s

User request (if any): %s

Generate a JSON object with the following fields:
- name: Character's name
- faction: Which faction of the world they belong to
- profession: Their occupation or role
- personality_traits: Array of 2-4 personality traits
- background: Brief history (1-2 sentences)

Return only valid JSON, nothing else.`, name, summary, request)
}

func strictDetailsPrompt(name string) string {
	return fmt.Sprintf(`Create a valid JSON object for the character "%s". Return only clean JSON:
{"name": "character name", "faction": "faction", "profession": "occupation", "personality_traits": ["trait1", "trait2"], "background": "background story"}`, name)
}
