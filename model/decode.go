package model

import "encoding/json"

// decodeInto re-marshals a dynamically-typed body (as handed back by
// codec.Decode) and unmarshals it into dst. Roon's response bodies are
// JSON objects decoded into map[string]interface{} by the codec layer;
// this is the bridge from that generic shape to a small typed struct
// that only names the fields a caller actually needs.
func decodeInto(body map[string]interface{}, dst interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
