package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoJSONObject is returned when a model reply contains no '{'.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ParseJSON decodes the outermost JSON object of a model reply into T.
// Markdown fences and prose around the object are ignored. Objects that fail
// to decode get one pass through jsonrepair.
func ParseJSON[T any](response string) (T, error) {
	var result T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return result, ErrNoJSONObject
	}
	end := strings.LastIndexByte(response, '}')
	if end < start {
		return result, fmt.Errorf("%w: unterminated object", ErrNoJSONObject)
	}

	body := response[start : end+1]
	err := json.Unmarshal([]byte(body), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(body)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	var fixed T
	if err := json.Unmarshal([]byte(repaired), &fixed); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON: %w", err)
	}
	return fixed, nil
}
