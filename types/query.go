package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// AskParams is the body of POST /ask. The question field is checked
// directly by the handler, which owns the exact error body for a
// missing question.
type AskParams struct {
	Question string `json:"question"`
}

// ChatMessage is one turn of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams is the body of POST /api/chat. The last message carries
// the user question.
type ChatParams struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1"`
}

// AskResponse is the structured answer returned by POST /ask.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *ChatParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
