package handler

import (
	"net/http"

	"github.com/vntrieu/avalon-engine/internal/games"
)

// RuleResponse describes one optional rule.
type RuleResponse struct {
	Name        games.Rule `json:"name"`
	Description string     `json:"description"`
}

// ListRules handles GET /api/rules
//
// @Summary      List rules
// @Description  The catalog of optional rules a game master can add to a ruleset.
// @Tags         rules
// @Produce      json
// @Success      200  {array}  RuleResponse
// @Router       /api/rules [get]
func ListRules(w http.ResponseWriter, r *http.Request) {
	rules := games.AllRules()
	out := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, RuleResponse{Name: rule, Description: games.RuleDescription(rule)})
	}
	writeJSON(w, r, http.StatusOK, out)
}
