package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	autoschema "github.com/reoring/autoschema"
)

func TestUserPrompt_ListsVocabulary(t *testing.T) {
	p := UserPrompt("  Output a user with name and email.  ", ModeStandard)
	assert.Contains(t, p, "[Prompt]\nOutput a user with name and email.\n")
	for _, f := range autoschema.SupportedFormats() {
		assert.Contains(t, p, string(f))
	}
	for _, k := range autoschema.NumericConstraints() {
		assert.Contains(t, p, k)
	}
	assert.Contains(t, p, "minItems, maxItems, items")
	assert.NotContains(t, p, "Think step by step")
}

func TestPrompts_ModesDiffer(t *testing.T) {
	assert.NotEqual(t, SystemPrompt(ModeStandard), SystemPrompt(ModeExtendedReasoning))
	p := UserPrompt("feedback analysis", ModeExtendedReasoning)
	assert.Contains(t, p, "[Context]\nfeedback analysis")
	assert.Contains(t, p, "Think step by step")
}

func TestRepairMessages(t *testing.T) {
	msgs := RepairMessages("p", ModeStandard, `{"type":"string"}`, "boom at /")
	if assert.Len(t, msgs, 4) {
		assert.Equal(t, []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser},
			[]Role{msgs[0].Role, msgs[1].Role, msgs[2].Role, msgs[3].Role})
		assert.Contains(t, msgs[3].Content, "[Error]\nboom at /\n")
	}
	assert.Len(t, RepairMessages("p", ModeStandard, "", "boom"), 3)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "standard", ModeStandard.String())
	assert.Equal(t, "extended_reasoning", ModeExtendedReasoning.String())
}
