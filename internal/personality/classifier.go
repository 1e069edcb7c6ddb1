// Package personality определяет склонность персонажа по тексту его черт характера.
package personality

import "strings"

// Disposition - эвристическая склонность персонажа, задающая тон ответов.
type Disposition int

const (
	Benevolent Disposition = iota
	Malevolent
)

var (
	benevolentTerms = []string{"good", "kind", "helpful", "honest", "fair", "noble"}
	malevolentTerms = []string{"evil", "bad", "cruel", "selfish", "cunning", "ruthless"}
)

// Classify считает, сколько терминов каждого словаря встречается в тексте (подстрокой, без учета регистра).
// Каждый термин учитывается не более одного раза. При равенстве выбирается Benevolent.
func Classify(traits string) Disposition {
	text := strings.ToLower(traits)
	if countTerms(text, benevolentTerms) >= countTerms(text, malevolentTerms) {
		return Benevolent
	}
	return Malevolent
}

func countTerms(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// Phrase возвращает описание склонности для промпта.
func (d Disposition) Phrase() string {
	if d == Malevolent {
		return "malicious, selfish, and suspicious"
	}
	return "good, helpful, and friendly"
}

func (d Disposition) String() string {
	if d == Malevolent {
		return "malevolent"
	}
	return "benevolent"
}
