package model

// Volume describes an output's volume control, when it exposes one.
type Volume struct {
	Type          string  `json:"type"` // number, db, incremental
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Value         float64 `json:"value"`
	Step          float64 `json:"step"`
	IsMuted       bool    `json:"is_muted"`
	HardLimitMin  float64 `json:"hard_limit_min,omitempty"`
	HardLimitMax  float64 `json:"hard_limit_max,omitempty"`
	SoftLimit     float64 `json:"soft_limit,omitempty"`
}

// SourceControl is one of an output's grouped source toggles (e.g. a
// receiver input that must be switched to before playback is audible).
type SourceControl struct {
	ControlKey string `json:"control_key"`
	DisplayName string `json:"display_name"`
	SupportsStandby bool `json:"supports_standby"`
	Status string `json:"status"`
}

// Output is a parsed `output` object, a single physical or virtual
// playback endpoint belonging to a zone.
type Output struct {
	OutputID               string          `json:"output_id"`
	ZoneID                 string          `json:"zone_id"`
	DisplayName            string          `json:"display_name"`
	State                  string          `json:"state"`
	Volume                 *Volume         `json:"volume,omitempty"`
	SourceControls         []SourceControl `json:"source_controls,omitempty"`
	CanGroupWithOutputIDs  []string        `json:"can_group_with_output_ids,omitempty"`
}

// ParseOutput parses a single output object.
func ParseOutput(body map[string]interface{}) (*Output, error) {
	var o Output
	if err := decodeInto(body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ParseOutputList parses the `outputs` array returned by get_outputs or
// carried in a subscribe_outputs Subscribed frame.
func ParseOutputList(items []interface{}) ([]Output, error) {
	outputs := make([]Output, 0, len(items))
	for _, item := range items {
		o, err := ParseOutput(asMap(item))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, *o)
	}
	return outputs, nil
}
