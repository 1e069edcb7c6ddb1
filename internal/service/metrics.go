package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	charactersGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npc_characters_generated_total",
			Help: "Character generation attempts by result (success, malformed, gateway_error, error).",
		},
		[]string{"result"},
	)
	conversationRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npc_conversation_replies_total",
			Help: "Character replies by degraded flag and persistence.",
		},
		[]string{"degraded", "persisted"},
	)
	questionsAnsweredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "npc_story_questions_total",
			Help: "Questions answered about stories by degraded flag.",
		},
		[]string{"degraded"},
	)
)

func boolLabel(b bool) string {
	return strconv.FormatBool(b)
}
