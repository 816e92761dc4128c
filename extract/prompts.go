package extract

import (
	"strings"

	autoschema "github.com/reoring/autoschema"
)

const standardSystemPrompt = `You are an expert at generating JSON Schemas for structured outputs.
Reply with a single JSON Schema document and nothing else.

[Important Constraints]
- Use only the supported types, formats and constraints listed by the user
- Add validation constraints where they are obvious from the prompt
- Always include a description for every field`

const extendedSystemPrompt = `You are an expert at analyzing prompts and inferring the optimal structured output format.
Reply with a single JSON Schema document and nothing else.

Your task is to analyze the intent and context of the prompt and design a JSON Schema for it, even when the expected structure is not spelled out.

[Analysis Approach]
1. Understand the domain and use case from the prompt
2. Identify implicit data requirements based on context
3. Infer logical field groupings and hierarchies
4. Choose data types and validation constraints
5. Decide which fields are required and which are optional

[Quality Standards]
- Use only the supported types, formats and constraints listed by the user
- Use clear, semantic field names (snake_case)
- Give every field a meaningful description`

// SystemPrompt returns the system instructions for mode.
func SystemPrompt(mode Mode) string {
	if mode == ModeExtendedReasoning {
		return extendedSystemPrompt
	}
	return standardSystemPrompt
}

// UserPrompt wraps prompt with the supported vocabulary and the expected
// output shape. The vocabulary is read from package autoschema so the prompt
// never advertises something the validator rejects.
func UserPrompt(prompt string, mode Mode) string {
	b := &strings.Builder{}
	if mode == ModeExtendedReasoning {
		b.WriteString("Analyze the following prompt carefully and infer the optimal structured output format.\n\n[Context]\n")
	} else {
		b.WriteString("Analyze the following prompt and define the expected output structure as a JSON Schema.\n\n[Prompt]\n")
	}
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\n[Requirements]\n")
	writeVocabulary(b)
	b.WriteString(outputFormat)
	if mode == ModeExtendedReasoning {
		b.WriteString("\nThink step by step about the optimal structure before generating the schema.\n")
	}
	return b.String()
}

func writeVocabulary(b *strings.Builder) {
	types := autoschema.SupportedTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	formats := autoschema.SupportedFormats()
	fnames := make([]string, len(formats))
	for i, f := range formats {
		fnames[i] = string(f)
	}
	b.WriteString("1. Supported types (use only these): " + strings.Join(names, ", ") + "\n")
	b.WriteString("   A field may also be a closed set of values (enum) or a union (anyOf).\n")
	b.WriteString("2. Supported formats for string fields: " + strings.Join(fnames, ", ") + "\n")
	b.WriteString("   Any other format (for example uri) is rejected.\n")
	b.WriteString("3. Constraints for number and integer fields: " + strings.Join(autoschema.NumericConstraints(), ", ") + "\n")
	b.WriteString("   Do not combine minimum with exclusiveMinimum or maximum with exclusiveMaximum.\n")
	b.WriteString("4. Constraints for array fields: " + strings.Join(autoschema.ArrayConstraints(), ", ") + "\n")
	b.WriteString("5. The top-level schema must be an object with a non-empty properties map.\n")
	b.WriteString("   Every name in required must be a key of properties. Enum values must be unique.\n")
}

const outputFormat = `
[Output Format]
{
  "type": "object",
  "title": "ModelName (PascalCase)",
  "properties": {
    "field_name": {
      "type": "string",
      "description": "Field description"
    }
  },
  "required": ["field_name"]
}
`

// RepairPrompt asks the generator to fix its previous schema. errText is the
// error message exactly as reported.
func RepairPrompt(errText string) string {
	return `The previous schema could not be used. Fix it based on the following error:

[Error]
` + errText + `

[Instructions]
1. Read the error message and identify what went wrong
2. Fix the specific issue mentioned in the error
3. Keep every field that was not part of the problem
4. Use only the supported types, formats and constraints

Reply with the corrected JSON Schema document only.`
}

// Messages returns the conversation for a first attempt.
func Messages(prompt string, mode Mode) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt(mode)},
		{Role: RoleUser, Content: UserPrompt(prompt, mode)},
	}
}

// RepairMessages returns the conversation for a retry: the first-attempt
// messages, the previous response (when there was one) and the repair
// request.
func RepairMessages(prompt string, mode Mode, previous, errText string) []Message {
	msgs := Messages(prompt, mode)
	if strings.TrimSpace(previous) != "" {
		msgs = append(msgs, Message{Role: RoleAssistant, Content: previous})
	}
	return append(msgs, Message{Role: RoleUser, Content: RepairPrompt(errText)})
}
