package chatstream

import (
	"strings"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

var difficultyLabels = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "Начальный (будь более снисходительным)",
	domain.DifficultyMedium: "Средний",
	domain.DifficultyHard:   "Продвинутый (требуй полного владения техникой)",
}

// BuildContext flattens a mentor context into the labelled text block the
// relay appends to its system instruction. Empty fields are left out.
func BuildContext(c *domain.MentorContext) string {
	if c == nil {
		return ""
	}

	var parts []string
	if c.TaskTitle != "" {
		parts = append(parts, "Задание: "+c.TaskTitle)
	}
	if c.TaskDescription != "" {
		parts = append(parts, "Описание задания: "+c.TaskDescription)
	}
	if c.TaskDifficulty != "" {
		label, ok := difficultyLabels[c.TaskDifficulty]
		if !ok {
			label = string(c.TaskDifficulty)
		}
		parts = append(parts, "Уровень сложности: "+label)
	}
	if c.UserAnswer != "" {
		parts = append(parts, "Ответ студента:\n"+c.UserAnswer)
	}
	if len(c.SuccessCriteria) > 0 {
		parts = append(parts, "Критерии успеха:\n- "+strings.Join(c.SuccessCriteria, "\n- "))
	}
	if c.PreviousFeedback != "" {
		parts = append(parts, "Предыдущая обратная связь:\n"+c.PreviousFeedback)
	}
	return strings.Join(parts, "\n\n")
}
