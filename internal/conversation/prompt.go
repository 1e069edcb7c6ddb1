package conversation

import (
	"fmt"

	"npc-server/internal/personality"
	"npc-server/shared/models"
)

const replyErrorPrefix = "Error while generating response"

func rolePlayPrompt(c *models.Character, disposition personality.Disposition, message string) string {
	return fmt.Sprintf(`Assume the role of a character with the following traits:
- Name: %s
- Faction: %s
- Profession: %s
- Personality: %s
- Background: %s

Your character has a %s personality.

The user wrote to you: "%s"

Respond as this character, maintaining their unique character and manner of speaking.
The response should be short (2-3 sentences) and fully reflect the character's personality.`,
		c.Name, c.Faction, c.Profession, c.PersonalityTraits.String(), c.Background,
		disposition.Phrase(), message)
}
