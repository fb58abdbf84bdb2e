package cliutil

import (
	"encoding/json"
	"io"
)

// WriteJSON writes the given value as JSON to the writer.
// If verbose is true, it pretty-prints with indentation.
func WriteJSON(w io.Writer, v any, verbose bool) error {
	encoder := json.NewEncoder(w)
	if verbose {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// WriteLLM writes the given value as single-line JSON: compact enough to
// paste into a prompt, still machine-parseable. Map keys come out sorted;
// struct fields keep their declaration order.
func WriteLLM(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
