package model

// ChangedKind identifies which part of a Changed frame a ZoneEvent or
// OutputEvent was produced from.
type ChangedKind int

const (
	Removed ChangedKind = iota
	Added
	Changed
	SeekChanged
)

func (k ChangedKind) String() string {
	switch k {
	case Removed:
		return "removed"
	case Added:
		return "added"
	case Changed:
		return "changed"
	case SeekChanged:
		return "seek_changed"
	default:
		return "unknown"
	}
}

// ZoneEvent is one event extracted from a subscribe_zones Changed
// frame. Exactly one of ZoneIDs, Zones, or Seeks is populated,
// according to Kind.
type ZoneEvent struct {
	Kind    ChangedKind
	ZoneIDs []string
	Zones   []Zone
	Seeks   []ZoneSeek
}

// ParseZonesChanged implements the Changed-frame parsing invariant: a
// frame may carry zones_removed, zones_added, zones_changed, and
// zones_seek_changed simultaneously, and one event must be emitted per
// non-empty key, in that fixed order. A frame with nothing in any of
// the four keys yields zero events.
func ParseZonesChanged(body map[string]interface{}) ([]ZoneEvent, error) {
	var events []ZoneEvent

	if raw, ok := body["zones_removed"]; ok {
		ids := stringSlice(asSlice(raw))
		if len(ids) > 0 {
			events = append(events, ZoneEvent{Kind: Removed, ZoneIDs: ids})
		}
	}
	if raw, ok := body["zones_added"]; ok {
		zones, err := ParseZoneList(asSlice(raw))
		if err != nil {
			return nil, err
		}
		if len(zones) > 0 {
			events = append(events, ZoneEvent{Kind: Added, Zones: zones})
		}
	}
	if raw, ok := body["zones_changed"]; ok {
		zones, err := ParseZoneList(asSlice(raw))
		if err != nil {
			return nil, err
		}
		if len(zones) > 0 {
			events = append(events, ZoneEvent{Kind: Changed, Zones: zones})
		}
	}
	if raw, ok := body["zones_seek_changed"]; ok {
		seeks, err := parseZoneSeeks(asSlice(raw))
		if err != nil {
			return nil, err
		}
		if len(seeks) > 0 {
			events = append(events, ZoneEvent{Kind: SeekChanged, Seeks: seeks})
		}
	}
	return events, nil
}

func parseZoneSeeks(items []interface{}) ([]ZoneSeek, error) {
	out := make([]ZoneSeek, 0, len(items))
	for _, item := range items {
		var s ZoneSeek
		if err := decodeInto(asMap(item), &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// OutputEvent is one event extracted from a subscribe_outputs Changed
// frame. Outputs have no seek_changed key.
type OutputEvent struct {
	Kind      ChangedKind
	OutputIDs []string
	Outputs   []Output
}

// ParseOutputsChanged is ParseZonesChanged's counterpart for the
// outputs stream: outputs_removed, outputs_added, outputs_changed, in
// that order, no seek_changed key.
func ParseOutputsChanged(body map[string]interface{}) ([]OutputEvent, error) {
	var events []OutputEvent

	if raw, ok := body["outputs_removed"]; ok {
		ids := stringSlice(asSlice(raw))
		if len(ids) > 0 {
			events = append(events, OutputEvent{Kind: Removed, OutputIDs: ids})
		}
	}
	if raw, ok := body["outputs_added"]; ok {
		outputs, err := ParseOutputList(asSlice(raw))
		if err != nil {
			return nil, err
		}
		if len(outputs) > 0 {
			events = append(events, OutputEvent{Kind: Added, Outputs: outputs})
		}
	}
	if raw, ok := body["outputs_changed"]; ok {
		outputs, err := ParseOutputList(asSlice(raw))
		if err != nil {
			return nil, err
		}
		if len(outputs) > 0 {
			events = append(events, OutputEvent{Kind: Changed, Outputs: outputs})
		}
	}
	return events, nil
}

func stringSlice(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
