package handler

import (
	"npc-server/shared/models"
)

type storyRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

type characterRequest struct {
	// Story обязателен при создании и игнорируется при обновлении.
	Story             string                   `json:"story" binding:"omitempty,uuid"`
	Name              string                   `json:"name" binding:"required,max=255"`
	Faction           string                   `json:"faction" binding:"required,max=255"`
	Profession        string                   `json:"profession" binding:"required,max=255"`
	PersonalityTraits models.PersonalityTraits `json:"personality_traits"`
	Background        string                   `json:"background" binding:"required"`
}

func (r characterRequest) record() models.CharacterRecord {
	return models.CharacterRecord{
		Name:              r.Name,
		Faction:           r.Faction,
		Profession:        r.Profession,
		PersonalityTraits: r.PersonalityTraits,
		Background:        r.Background,
	}
}

type askQuestionRequest struct {
	Question string `json:"question" binding:"required,max=300"`
}

type askQuestionResponse struct {
	Answer string `json:"answer"`
}

// generateRequest используется и для generate-name, и для generate-character.
type generateRequest struct {
	Request string `json:"request" binding:"required,max=300"`
}

type generateNameResponse struct {
	Name string `json:"name"`
}

type talkRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
	Persist *bool  `json:"persist"`
}

type talkResponse struct {
	Response string `json:"response"`
}

// wsReplyFrame - исходящий кадр WebSocket с целым ответом персонажа.
type wsReplyFrame struct {
	Response string `json:"response"`
	Degraded bool   `json:"degraded"`
}

type wsErrorFrame struct {
	Error models.ErrorResponse `json:"error"`
}
