package advisor

import (
	"strings"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// ExcerptLength is the maximum number of runes of an answer copied into an extracted insight.
const ExcerptLength = 150

var (
	warningVocabulary = common.KeywordPattern(
		"warning", "careful", "caution", "alert", "overspend", "exceed", "risk", "⚠️", "⚠",
	)
	tipVocabulary = common.KeywordPattern(
		"tip", "suggest", "recommend", "consider", "could save", "💡",
	)
)

// extractInsights scans a free-text answer for warning and tip vocabulary.
// Both kinds can fire on the same answer; neither firing yields nil.
func (s *Service) extractInsights(answer string) []model.Insight {
	var insights []model.Insight
	excerpt := truncateRunes(strings.TrimSpace(answer), ExcerptLength)

	if warningVocabulary.MatchString(answer) {
		insights = append(insights, s.newInsight(model.Insight{
			Type:        model.InsightWarning,
			Title:       "Attention needed",
			Description: excerpt,
			Priority:    model.PriorityMedium,
		}))
	}

	if tipVocabulary.MatchString(answer) {
		insights = append(insights, s.newInsight(model.Insight{
			Type:        model.InsightTip,
			Title:       "Financial tip",
			Description: excerpt,
			Priority:    model.PriorityLow,
		}))
	}

	return insights
}

// truncateRunes shortens s to at most n runes, marking the cut with an ellipsis.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
