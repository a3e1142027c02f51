package core

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarshalResult pretty-prints a result as JSON for humans or pipelines.
func MarshalResult(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// UnmarshalResult decodes result JSON, useful for ingestion tests. Missing
// collections decode as empty, never nil.
func UnmarshalResult(r io.Reader) (Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode result: %w", err)
	}
	if res.Findings == nil {
		res.Findings = []Finding{}
	}
	if res.Metadata.CategoryCounts == nil {
		res.Metadata.CategoryCounts = map[string]int{}
	}
	return res, nil
}
