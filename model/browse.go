package model

// InputPrompt describes a text input a browse item requires before it
// can be acted on (e.g. a search box).
type InputPrompt struct {
	Prompt             string `json:"prompt"`
	Action             string `json:"action"`
	Value              string `json:"value,omitempty"`
	IsPassword         bool   `json:"is_password,omitempty"`
}

// BrowseItem is a single entry in a browse hierarchy level or the
// result of a browse action.
type BrowseItem struct {
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle,omitempty"`
	ImageKey    string       `json:"image_key,omitempty"`
	ItemKey     string       `json:"item_key,omitempty"`
	Hint        string       `json:"hint,omitempty"` // action_list, list, header, action
	InputPrompt *InputPrompt `json:"input_prompt,omitempty"`
}

// ParseBrowseItem parses a single item object from a browse/load
// response.
func ParseBrowseItem(body map[string]interface{}) (*BrowseItem, error) {
	var b BrowseItem
	if err := decodeInto(body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ParseBrowseItems parses the `items` array of a load response.
func ParseBrowseItems(items []interface{}) ([]BrowseItem, error) {
	out := make([]BrowseItem, 0, len(items))
	for _, item := range items {
		b, err := ParseBrowseItem(asMap(item))
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

// BrowseList is the `list` object a browse response carries when the
// current level is a list (as opposed to a direct action result).
type BrowseList struct {
	Title        string `json:"title"`
	Count        int    `json:"count"`
	Level        int    `json:"level"`
	DisplayOffset int   `json:"display_offset,omitempty"`
}

// ParseBrowseList parses the `list` object of a browse response, when
// present.
func ParseBrowseList(body map[string]interface{}) (*BrowseList, error) {
	raw, ok := body["list"]
	if !ok {
		return nil, nil
	}
	var l BrowseList
	if err := decodeInto(asMap(raw), &l); err != nil {
		return nil, err
	}
	return &l, nil
}
