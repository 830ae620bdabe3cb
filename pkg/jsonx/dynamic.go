package jsonx

import "github.com/goccy/go-json"

// ToDynamicJSON converts val to its generic JSON object form by a marshal / unmarshal round trip.
// It fails when val does not encode to a JSON object.
func ToDynamicJSON(val any) (map[string]any, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	if err := json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}
