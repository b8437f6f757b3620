package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cares/internal/catalog"
	"cares/internal/extract"
	"cares/internal/model"
	"cares/internal/scoring"
)

func runScore(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: caresctl score <answers.json>")
	}
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	answers, err := decodeAnswers(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return printJSON(scoring.Compute(catalog.Default(), answers))
}

// decodeAnswers accepts a bare answer array or a full assessment request
func decodeAnswers(data []byte) ([]model.Answer, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var answers []model.Answer
		if err := json.Unmarshal(data, &answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		return answers, nil
	}
	var req model.AssessmentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	return req.Answers, nil
}

func runExtract(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: caresctl extract <file>")
	}
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	res := extract.Extract(string(data))
	if !res.OK() {
		fmt.Fprintln(stdout, "no JSON object found")
		return nil
	}
	fmt.Fprintf(stdout, "strategy: %s\n", res.Strategy)
	return printJSON(res.Object)
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
