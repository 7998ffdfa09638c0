package transport

import (
	"fmt"
	"time"

	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/model"
	"github.com/teancom/RoonKit/roon"
)

const servicePath = "com.roonlabs.transport:2"

// Service wraps a roon.Connection with the typed command surface of
// com.roonlabs.transport:2. A Service is not reentrant: its subscription
// methods share per-kind bookkeeping (see slot.go) and must not be
// called concurrently with themselves for the same kind — the same
// restriction the teacher's pkg/resonate.Player places on its own
// control methods by construction (one caller drives one Player).
type Service struct {
	conn    *roon.Connection
	Timeout time.Duration

	zones   *activeSlot
	outputs *activeSlot
	queues  *slotSet
}

// New wraps conn. Timeout defaults to conn's own request timeout when
// left zero on a call.
func New(conn *roon.Connection) *Service {
	return &Service{
		conn:    conn,
		zones:   newActiveSlot(),
		outputs: newActiveSlot(),
		queues:  newSlotSet(),
	}
}

func (s *Service) send(method string, body map[string]interface{}) (*codec.Response, error) {
	resp, err := s.conn.Send(servicePath+"/"+method, body, s.Timeout)
	if err != nil {
		return nil, err
	}
	if !codec.IsSuccess(resp.Name) {
		return resp, fmt.Errorf("%s: %s", method, resp.ErrorMessage())
	}
	return resp, nil
}

// GetZones returns a one-shot snapshot of every zone the Core knows
// about.
func (s *Service) GetZones() ([]model.Zone, error) {
	resp, err := s.send("get_zones", nil)
	if err != nil {
		return nil, err
	}
	return model.ParseZoneList(asSlice(resp.Body["zones"]))
}

// GetOutputs returns a one-shot snapshot of every output.
func (s *Service) GetOutputs() ([]model.Output, error) {
	resp, err := s.send("get_outputs", nil)
	if err != nil {
		return nil, err
	}
	return model.ParseOutputList(asSlice(resp.Body["outputs"]))
}

func (s *Service) control(zoneOrOutputID, control string) error {
	_, err := s.send("control", map[string]interface{}{
		"zone_or_output_id": zoneOrOutputID,
		"control":           control,
	})
	return err
}

func (s *Service) Play(zoneOrOutputID string) error     { return s.control(zoneOrOutputID, "play") }
func (s *Service) Pause(zoneOrOutputID string) error     { return s.control(zoneOrOutputID, "pause") }
func (s *Service) PlayPause(zoneOrOutputID string) error { return s.control(zoneOrOutputID, "playpause") }
func (s *Service) Stop(zoneOrOutputID string) error      { return s.control(zoneOrOutputID, "stop") }
func (s *Service) Next(zoneOrOutputID string) error      { return s.control(zoneOrOutputID, "next") }
func (s *Service) Previous(zoneOrOutputID string) error  { return s.control(zoneOrOutputID, "previous") }

func (s *Service) changeVolume(outputID, how string, value float64) error {
	_, err := s.send("change_volume", map[string]interface{}{
		"output_id": outputID,
		"how":       how,
		"value":     value,
	})
	return err
}

// SetVolume sets an output's absolute volume.
func (s *Service) SetVolume(outputID string, value float64) error {
	return s.changeVolume(outputID, "absolute", value)
}

// AdjustVolume changes an output's volume by a relative amount.
func (s *Service) AdjustVolume(outputID string, delta float64) error {
	return s.changeVolume(outputID, "relative", delta)
}

// StepVolume moves an output's volume by one step in the given
// direction (direction's sign), ignoring its magnitude — how=relative_step.
func (s *Service) StepVolume(outputID string, direction float64) error {
	return s.changeVolume(outputID, "relative_step", direction)
}

func (s *Service) muteHow(outputID, how string) error {
	_, err := s.send("mute", map[string]interface{}{"output_id": outputID, "how": how})
	return err
}

func (s *Service) Mute(outputID string) error   { return s.muteHow(outputID, "mute") }
func (s *Service) Unmute(outputID string) error { return s.muteHow(outputID, "unmute") }

func (s *Service) muteAllHow(how string) error {
	_, err := s.send("mute_all", map[string]interface{}{"how": how})
	return err
}

func (s *Service) MuteAll() error   { return s.muteAllHow("mute") }
func (s *Service) UnmuteAll() error { return s.muteAllHow("unmute") }

// PauseAll pauses every zone that is currently playing.
func (s *Service) PauseAll() error {
	_, err := s.send("pause_all", nil)
	return err
}

func (s *Service) seekHow(zoneOrOutputID, how string, seconds int) error {
	_, err := s.send("seek", map[string]interface{}{
		"zone_or_output_id": zoneOrOutputID,
		"how":               how,
		"seconds":           seconds,
	})
	return err
}

// SeekAbsolute seeks to an absolute position in the current track.
func (s *Service) SeekAbsolute(zoneOrOutputID string, seconds int) error {
	return s.seekHow(zoneOrOutputID, "absolute", seconds)
}

// SeekRelative seeks forward or backward (negative seconds) from the
// current position.
func (s *Service) SeekRelative(zoneOrOutputID string, seconds int) error {
	return s.seekHow(zoneOrOutputID, "relative", seconds)
}

// SetShuffle toggles the zone's shuffle setting.
func (s *Service) SetShuffle(zoneOrOutputID string, shuffle bool) error {
	_, err := s.send("change_settings", map[string]interface{}{
		"zone_or_output_id": zoneOrOutputID,
		"shuffle":           shuffle,
	})
	return err
}

// SetLoop sets the zone's loop mode: disabled, loop, loop_one, or next.
func (s *Service) SetLoop(zoneOrOutputID, loop string) error {
	_, err := s.send("change_settings", map[string]interface{}{
		"zone_or_output_id": zoneOrOutputID,
		"loop":              loop,
	})
	return err
}

// CycleLoop advances the zone's loop mode to the next one in sequence
// (the server's meaning of loop="next").
func (s *Service) CycleLoop(zoneOrOutputID string) error {
	return s.SetLoop(zoneOrOutputID, "next")
}

// SetAutoRadio toggles the zone's auto radio setting.
func (s *Service) SetAutoRadio(zoneOrOutputID string, autoRadio bool) error {
	_, err := s.send("change_settings", map[string]interface{}{
		"zone_or_output_id": zoneOrOutputID,
		"auto_radio":        autoRadio,
	})
	return err
}

func (s *Service) Standby(outputID, controlKey string) error {
	_, err := s.send("standby", map[string]interface{}{"output_id": outputID, "control_key": controlKey})
	return err
}

func (s *Service) ToggleStandby(outputID, controlKey string) error {
	_, err := s.send("toggle_standby", map[string]interface{}{"output_id": outputID, "control_key": controlKey})
	return err
}

func (s *Service) ConvenienceSwitch(outputID, controlKey string) error {
	_, err := s.send("convenience_switch", map[string]interface{}{"output_id": outputID, "control_key": controlKey})
	return err
}

// TransferZone moves playback from one zone/output to another.
func (s *Service) TransferZone(fromZoneOrOutputID, toZoneOrOutputID string) error {
	_, err := s.send("transfer_zone", map[string]interface{}{
		"from_zone_or_output_id": fromZoneOrOutputID,
		"to_zone_or_output_id":   toZoneOrOutputID,
	})
	return err
}

// GroupOutputs combines outputs into a single synchronized zone.
func (s *Service) GroupOutputs(outputIDs []string) error {
	_, err := s.send("group_outputs", map[string]interface{}{"output_ids": outputIDs})
	return err
}

// UngroupOutputs splits outputs back out of their group.
func (s *Service) UngroupOutputs(outputIDs []string) error {
	_, err := s.send("ungroup_outputs", map[string]interface{}{"output_ids": outputIDs})
	return err
}

// PlayFromHere starts playback at a specific queue item.
func (s *Service) PlayFromHere(zoneOrOutputID string, queueItemID int) error {
	_, err := s.send("play_from_here", map[string]interface{}{
		"zone_or_output_id": zoneOrOutputID,
		"queue_item_id":     queueItemID,
	})
	return err
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
