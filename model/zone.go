package model

// ThreeLine is the three-line track display Roon sends for now-playing
// and queue items (artist/album/title, arranged by the Core).
type ThreeLine struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	Line3 string `json:"line3,omitempty"`
}

// ZoneSettings carries the per-zone playback modifiers.
type ZoneSettings struct {
	Loop      string `json:"loop"` // disabled, loop, loop_one, next
	Shuffle   bool   `json:"shuffle"`
	AutoRadio bool   `json:"auto_radio"`
}

// NowPlaying describes the zone's current track, when one is loaded.
type NowPlaying struct {
	SeekPosition     int       `json:"seek_position,omitempty"`
	Length           int       `json:"length,omitempty"`
	ImageKey         string    `json:"image_key,omitempty"`
	OneLine          ThreeLine `json:"one_line,omitempty"`
	TwoLine          ThreeLine `json:"two_line,omitempty"`
	ThreeLine        ThreeLine `json:"three_line,omitempty"`
	ArtistImageKeys  []string  `json:"artist_image_keys,omitempty"`
}

// Zone is a parsed `zone` object, the unit of synchronized playback
// across one or more outputs.
type Zone struct {
	ZoneID                string       `json:"zone_id"`
	DisplayName           string       `json:"display_name"`
	State                 string       `json:"state"` // playing, paused, loading, stopped
	IsPreviousAllowed     bool         `json:"is_previous_allowed"`
	IsNextAllowed         bool         `json:"is_next_allowed"`
	IsPauseAllowed        bool         `json:"is_pause_allowed"`
	IsPlayAllowed         bool         `json:"is_play_allowed"`
	IsSeekAllowed         bool         `json:"is_seek_allowed"`
	QueueItemsRemaining   int          `json:"queue_items_remaining,omitempty"`
	QueueTimeRemaining    int          `json:"queue_time_remaining,omitempty"`
	Settings              ZoneSettings `json:"settings,omitempty"`
	NowPlaying            *NowPlaying  `json:"now_playing,omitempty"`
	Outputs               []Output     `json:"outputs,omitempty"`
}

// ParseZone parses a single zone object, as found in get_zones results
// or a zones_added/zones_changed element.
func ParseZone(body map[string]interface{}) (*Zone, error) {
	var z Zone
	if err := decodeInto(body, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

// ParseZoneList parses the `zones` array returned by get_zones or
// carried in a subscribe_zones Subscribed frame.
func ParseZoneList(items []interface{}) ([]Zone, error) {
	zones := make([]Zone, 0, len(items))
	for _, item := range items {
		z, err := ParseZone(asMap(item))
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, nil
}

// ZoneSeek is the payload of a zones_seek_changed entry: a lightweight
// position update that does not carry the rest of the zone.
type ZoneSeek struct {
	ZoneID             string `json:"zone_id"`
	QueueTimeRemaining int    `json:"queue_time_remaining,omitempty"`
	SeekPosition       int    `json:"seek_position"`
}
