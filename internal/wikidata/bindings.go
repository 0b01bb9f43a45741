package wikidata

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// Row is one SPARQL result binding reduced to variable -> value.
type Row map[string]string

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// DecodeBindings parses a SPARQL JSON result. The query service occasionally
// emits raw control characters inside literals, which encoding/json rejects;
// those bodies go through a lenient byte-level scan instead.
func DecodeBindings(body []byte) ([]Row, error) {
	var parsed sparqlResponse
	err := json.Unmarshal(body, &parsed)
	if err == nil {
		rows := make([]Row, 0, len(parsed.Results.Bindings))
		for _, b := range parsed.Results.Bindings {
			row := make(Row, len(b))
			for name, v := range b {
				row[name] = v.Value
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	rows, relaxedErr := decodeBindingsRelaxed(body)
	if relaxedErr != nil {
		return nil, fmt.Errorf("decode bindings: %w", errors.Join(err, relaxedErr))
	}
	return rows, nil
}

func decodeBindingsRelaxed(body []byte) ([]Row, error) {
	rows := make([]Row, 0)
	var rowErr error

	_, err := jsonparser.ArrayEach(body, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if rowErr != nil {
			return
		}
		if err != nil {
			rowErr = err
			return
		}
		if dataType != jsonparser.Object {
			return
		}
		row := make(Row)
		rowErr = jsonparser.ObjectEach(value, func(key []byte, field []byte, fieldType jsonparser.ValueType, _ int) error {
			if fieldType != jsonparser.Object {
				return nil
			}
			v, err := jsonparser.GetString(field, "value")
			if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
				return err
			}
			row[string(key)] = v
			return nil
		})
		if rowErr == nil {
			rows = append(rows, row)
		}
	}, "results", "bindings")
	if err != nil {
		return nil, err
	}
	if rowErr != nil {
		return nil, rowErr
	}
	return rows, nil
}
