// Package quiz defines quiz items and synthesizes mixed-format quizzes from
// retrieved corpus text.
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ItemType is the format of a quiz item.
type ItemType string

const (
	TypeTF   ItemType = "tf"
	TypeMCQ  ItemType = "mcq"
	TypeOpen ItemType = "open"
)

// Answer is a gold answer: a boolean for true/false items, text otherwise.
type Answer struct {
	IsBool bool
	Truth  bool
	Text   string
}

// BoolAnswer wraps a true/false gold answer.
func BoolAnswer(b bool) Answer { return Answer{IsBool: true, Truth: b} }

// TextAnswer wraps a textual gold answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

func (a Answer) String() string {
	if a.IsBool {
		return strconv.FormatBool(a.Truth)
	}
	return a.Text
}

// MarshalJSON encodes the answer as a JSON boolean or string.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsBool {
		return json.Marshal(a.Truth)
	}
	return json.Marshal(a.Text)
}

// UnmarshalJSON accepts a JSON boolean or string.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = BoolAnswer(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("answer must be a boolean or a string: %w", err)
	}
	*a = TextAnswer(s)
	return nil
}

// Item is a single generated question together with its gold answer.
type Item struct {
	Type     ItemType `json:"type"`
	Question string   `json:"question"`
	Answer   Answer   `json:"answer"`
	Options  []string `json:"options,omitempty"`
	Sources  []string `json:"sources"`
}

// Quiz is an ordered set of items about a topic. ID is assigned when the
// quiz is stored.
type Quiz struct {
	ID    string `json:"id,omitempty"`
	Topic string `json:"topic"`
	Items []Item `json:"items"`
}

// ErrInvalidQuiz is returned when a quiz document fails validation.
var ErrInvalidQuiz = errors.New("invalid quiz")
