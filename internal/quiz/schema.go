package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://ragquiz/quiz.json"

// quizSchema describes a stored or submitted quiz document.
const quizSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["topic", "items"],
  "properties": {
    "id": {"type": "string"},
    "topic": {"type": "string"},
    "items": {"type": "array", "items": {"$ref": "#/$defs/item"}}
  },
  "$defs": {
    "item": {
      "type": "object",
      "required": ["type", "question", "answer", "sources"],
      "properties": {
        "type": {"enum": ["tf", "mcq", "open"]},
        "question": {"type": "string", "minLength": 1},
        "answer": {"type": ["boolean", "string"]},
        "options": {"type": "array", "items": {"type": "string"}},
        "sources": {"type": "array", "items": {"type": "string"}}
      },
      "allOf": [
        {
          "if": {"properties": {"type": {"const": "tf"}}},
          "then": {"properties": {"answer": {"type": "boolean"}}}
        },
        {
          "if": {"properties": {"type": {"const": "mcq"}}},
          "then": {
            "required": ["options"],
            "properties": {"answer": {"type": "string"}, "options": {"minItems": 2}}
          }
        },
        {
          "if": {"properties": {"type": {"const": "open"}}},
          "then": {"properties": {"answer": {"type": "string"}}}
        }
      ]
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(quizSchema), &doc); err != nil {
			compileErr = fmt.Errorf("parse quiz schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Decode parses and validates a quiz document. Validation failures wrap
// ErrInvalidQuiz.
func Decode(raw []byte) (Quiz, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Quiz{}, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidQuiz, err)
	}
	sch, err := schema()
	if err != nil {
		return Quiz{}, err
	}
	if err := sch.Validate(parsed); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	var q Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	if err := Check(q.Items); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// Check enforces the item invariants a schema cannot express: true/false
// answers are booleans and a multiple-choice answer matches exactly one
// option, ignoring case.
func Check(items []Item) error {
	for i, it := range items {
		switch it.Type {
		case TypeTF:
			if !it.Answer.IsBool {
				return fmt.Errorf("%w: item %d: tf answer must be boolean", ErrInvalidQuiz, i)
			}
		case TypeMCQ:
			if it.Answer.IsBool {
				return fmt.Errorf("%w: item %d: mcq answer must be text", ErrInvalidQuiz, i)
			}
			matches := 0
			for _, o := range it.Options {
				if strings.EqualFold(o, it.Answer.Text) {
					matches++
				}
			}
			if matches != 1 {
				return fmt.Errorf("%w: item %d: answer %q matches %d options", ErrInvalidQuiz, i, it.Answer.Text, matches)
			}
		case TypeOpen:
			if it.Answer.IsBool {
				return fmt.Errorf("%w: item %d: open answer must be text", ErrInvalidQuiz, i)
			}
		default:
			return fmt.Errorf("%w: item %d: unknown type %q", ErrInvalidQuiz, i, it.Type)
		}
	}
	return nil
}
