package interview

import "github.com/esnunes/featurechat/internal/models"

// Prompt is one question of the interview and the slot its answer fills.
type Prompt struct {
	ID      string
	Message string
	Field   models.Field
}

var script = [...]Prompt{
	{
		ID:      "initial_description",
		Message: "Please provide a brief description of the feature you'd like to discuss.",
		Field:   models.FieldDescription,
	},
	{
		ID:      "business_value",
		Message: "What business value does this feature provide? How does it benefit users or stakeholders?",
		Field:   models.FieldBusinessValue,
	},
	{
		ID:      "target_users",
		Message: "Who are the target users for this feature?",
		Field:   models.FieldTargetUsers,
	},
	{
		ID:      "requirements",
		Message: "What are the key requirements or constraints for this feature?",
		Field:   models.FieldRequirements,
	},
	{
		ID:      "success_criteria",
		Message: "What are the success criteria for this feature? How will we know it's working as intended?",
		Field:   models.FieldSuccessCriteria,
	},
	{
		ID:      "technical_approach",
		Message: "Do you have any specific technical approach in mind for implementing this feature?",
		Field:   models.FieldTechnicalApproach,
	},
	{
		ID:      "risks",
		Message: "Are there any potential risks or challenges we should consider?",
		Field:   models.FieldRisks,
	},
	{
		ID:      "timeline",
		Message: "What's the desired timeline or priority for this feature?",
		Field:   models.FieldTimeline,
	},
}

// Script returns a copy of the ordered prompt sequence.
func Script() []Prompt {
	return append([]Prompt(nil), script[:]...)
}

func ScriptLen() int {
	return len(script)
}

func FirstPrompt() Prompt {
	return script[0]
}

func PromptAt(k int) (Prompt, bool) {
	if k < 0 || k >= len(script) {
		return Prompt{}, false
	}
	return script[k], true
}

// IndexOf returns the position of the prompt with the given id, or -1.
func IndexOf(id string) int {
	for i, p := range script {
		if p.ID == id {
			return i
		}
	}
	return -1
}
