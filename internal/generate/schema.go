package generate

import (
	"github.com/xeipuuv/gojsonschema"
)

// Element schemas. Each array element of a model response is validated on its
// own so one bad element never sinks the batch.

const chapterSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1}
  }
}`

// answerItem accepts both answer spellings the prompts ask for.
const answerItemJSON = `{
  "type": "object",
  "anyOf": [
    {"required": ["text"], "properties": {"text": {"type": "string", "minLength": 1}}},
    {"required": ["answer"], "properties": {"answer": {"type": "string", "minLength": 1}}}
  ]
}`

const questionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["question", "answers"],
  "properties": {
    "question": {"type": "string", "minLength": 1},
    "answers": {
      "type": "array",
      "minItems": 2,
      "items": ` + answerItemJSON + `,
      "contains": {
        "anyOf": [
          {"required": ["isCorrect"], "properties": {"isCorrect": {"const": true}}},
          {"required": ["is_correct"], "properties": {"is_correct": {"const": true}}}
        ]
      }
    }
  }
}`

const lessonSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "type"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "type": {"enum": ["TEXT", "VIDEO", "QUIZ"]}
  },
  "if": {"properties": {"type": {"const": "TEXT"}}},
  "then": {
    "required": ["content"],
    "properties": {"content": {"type": "string", "minLength": 1}}
  }
}`

var (
	chapterSchema  = mustSchema(chapterSchemaJSON)
	questionSchema = mustSchema(questionSchemaJSON)
	lessonSchema   = mustSchema(lessonSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("generate: invalid element schema: " + err.Error())
	}
	return s
}
