package router

import "strings"

// DefaultExpression is applied when an emotion name is not recognized.
const DefaultExpression = "neutral"

// expressionAliases maps free-text emotion names from the wire onto the
// fixed expression set the stage understands.
var expressionAliases = map[string]string{
	"neutral":     "neutral",
	"calm":        "neutral",
	"happy":       "happy",
	"joy":         "happy",
	"joyful":      "happy",
	"smile":       "happy",
	"laugh":       "happy",
	"excited":     "happy",
	"sad":         "sad",
	"sorrow":      "sad",
	"cry":         "sad",
	"crying":      "sad",
	"angry":       "angry",
	"anger":       "angry",
	"mad":         "angry",
	"rage":        "angry",
	"surprised":   "surprised",
	"surprise":    "surprised",
	"shock":       "surprised",
	"shocked":     "surprised",
	"amazed":      "surprised",
	"embarrassed": "embarrassed",
	"shy":         "embarrassed",
	"awkward":     "embarrassed",
	"thinking":    "thinking",
	"pensive":     "thinking",
}

// ResolveExpression maps a free-text emotion name to a stage expression,
// falling back to the neutral default for anything unrecognized.
func ResolveExpression(name string) string {
	if resolved, ok := expressionAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return resolved
	}
	return DefaultExpression
}
