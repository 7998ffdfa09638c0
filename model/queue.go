package model

// QueueItem is a parsed entry from a zone's play queue.
type QueueItem struct {
	QueueItemID int       `json:"queue_item_id"`
	Length      int       `json:"length,omitempty"`
	ImageKey    string    `json:"image_key,omitempty"`
	OneLine     ThreeLine `json:"one_line,omitempty"`
	TwoLine     ThreeLine `json:"two_line,omitempty"`
	ThreeLine   ThreeLine `json:"three_line,omitempty"`
}

// ParseQueueItems parses the `items` array carried by a subscribe_queue
// Subscribed frame (the only variant current servers emit, per
// spec.md §4.4.10).
func ParseQueueItems(items []interface{}) ([]QueueItem, error) {
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		var qi QueueItem
		if err := decodeInto(asMap(item), &qi); err != nil {
			return nil, err
		}
		out = append(out, qi)
	}
	return out, nil
}

// QueueChangeOperation is one incremental queue mutation. Current
// servers only ever send a full snapshot on Subscribed, but the wire
// format defines insert/remove operations and a subscriber must not
// break if one arrives.
type QueueChangeOperation struct {
	Operation string      `json:"operation"` // "insert" or "remove"
	Index     int         `json:"index"`
	Count     int         `json:"count,omitempty"`
	Items     []QueueItem `json:"items,omitempty"`
}

// ParseQueueChanges parses the `changes` array of an incremental queue
// Changed frame.
func ParseQueueChanges(body map[string]interface{}) ([]QueueChangeOperation, error) {
	raw, ok := body["changes"]
	if !ok {
		return nil, nil
	}
	items := asSlice(raw)
	ops := make([]QueueChangeOperation, 0, len(items))
	for _, item := range items {
		var op QueueChangeOperation
		if err := decodeInto(asMap(item), &op); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
