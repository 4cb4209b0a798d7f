package model

import "github.com/pkoukk/tiktoken-go"

// CountTokens estimates prompt size with the gpt-3.5-turbo encoding,
// which is close enough for the local models we front.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
