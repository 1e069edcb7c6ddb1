package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Character - NPC, принадлежащий ровно одной истории.
type Character struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	StoryID           uuid.UUID         `db:"story_id" json:"story"`
	Name              string            `db:"name" json:"name"`
	Faction           string            `db:"faction" json:"faction"`
	Profession        string            `db:"profession" json:"profession"`
	PersonalityTraits PersonalityTraits `db:"personality_traits" json:"personality_traits"`
	Background        string            `db:"background" json:"background"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
}

// CharacterFilter задает параметры выборки списка персонажей.
type CharacterFilter struct {
	StoryID    *uuid.UUID
	Faction    string
	Profession string
	Search     string // name / faction / profession
	Page       int
	Size       int
}

// CharacterRecord - структурированный результат генерации до сохранения.
type CharacterRecord struct {
	Name              string            `json:"name"`
	Faction           string            `json:"faction"`
	Profession        string            `json:"profession"`
	PersonalityTraits PersonalityTraits `json:"personality_traits"`
	Background        string            `json:"background"`
}

// Validate проверяет, что модель вернула все обязательные поля.
func (r *CharacterRecord) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Faction) == "" {
		missing = append(missing, "faction")
	}
	if strings.TrimSpace(r.Profession) == "" {
		missing = append(missing, "profession")
	}
	if r.PersonalityTraits.IsEmpty() {
		missing = append(missing, "personality_traits")
	}
	if strings.TrimSpace(r.Background) == "" {
		missing = append(missing, "background")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// ToCharacter превращает запись генерации в персонажа указанной истории.
func (r *CharacterRecord) ToCharacter(storyID uuid.UUID) *Character {
	return &Character{
		StoryID:           storyID,
		Name:              strings.TrimSpace(r.Name),
		Faction:           strings.TrimSpace(r.Faction),
		Profession:        strings.TrimSpace(r.Profession),
		PersonalityTraits: r.PersonalityTraits,
		Background:        strings.TrimSpace(r.Background),
	}
}

// PersonalityTraits хранит черты характера либо свободным текстом, либо списком коротких строк.
// В JSON (и в jsonb колонке) сохраняется исходная форма.
type PersonalityTraits struct {
	Text string
	List []string
}

// TraitsFromText создает черты из свободного текста.
func TraitsFromText(s string) PersonalityTraits {
	return PersonalityTraits{Text: s}
}

// TraitsFromList создает черты из списка.
func TraitsFromList(items ...string) PersonalityTraits {
	return PersonalityTraits{List: items}
}

// IsList reports whether the traits were provided as an array.
func (p PersonalityTraits) IsList() bool {
	return p.List != nil
}

// IsEmpty is true when neither form carries any non-blank value.
func (p PersonalityTraits) IsEmpty() bool {
	if p.IsList() {
		for _, item := range p.List {
			if strings.TrimSpace(item) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(p.Text) == ""
}

// String returns the canonical form used in prompts: list items joined with ", ".
func (p PersonalityTraits) String() string {
	if p.IsList() {
		return strings.Join(p.List, ", ")
	}
	return p.Text
}

// MarshalJSON пишет исходную форму: массив строк или строку.
func (p PersonalityTraits) MarshalJSON() ([]byte, error) {
	if p.IsList() {
		return json.Marshal(p.List)
	}
	return json.Marshal(p.Text)
}

// UnmarshalJSON принимает как строку, так и массив строк.
func (p *PersonalityTraits) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = PersonalityTraits{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("personality_traits: %w", err)
		}
		*p = PersonalityTraits{Text: s}
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("personality_traits: %w", err)
		}
		if items == nil {
			items = []string{}
		}
		*p = PersonalityTraits{List: items}
		return nil
	default:
		return fmt.Errorf("personality_traits: expected string or array of strings, got %s", string(trimmed))
	}
}
