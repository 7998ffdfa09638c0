package transport

import (
	"log"

	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/model"
)

// SubscribeZones opens the single active zones subscription. Calling
// it again finishes the previous one first (spec.md §4.4.9): its
// consumer's range over the returned channel terminates before the
// new subscription's first event can arrive.
func (s *Service) SubscribeZones() (<-chan model.ZoneEvent, func(), error) {
	out := make(chan model.ZoneEvent, 16)

	raw, rawCancel, err := s.conn.Subscribe(servicePath+"/subscribe_zones", nil, func() {
		s.conn.Send(servicePath+"/unsubscribe_zones", nil, 0)
	})
	if err != nil {
		close(out)
		return out, func() {}, err
	}

	myKey := s.zones.claim(rawCancel)

	go func() {
		defer close(out)
		defer s.zones.release(myKey)
		for resp := range raw {
			dispatchZoneFrame(resp, out)
		}
	}()

	return out, func() { s.zones.release(myKey); rawCancel() }, nil
}

func dispatchZoneFrame(resp *codec.Response, out chan<- model.ZoneEvent) {
	switch resp.Name {
	case "Subscribed":
		zones, err := model.ParseZoneList(asSlice(resp.Body["zones"]))
		if err != nil {
			log.Printf("roonkit: failed to parse zones snapshot: %v", err)
			return
		}
		if len(zones) > 0 {
			out <- model.ZoneEvent{Kind: model.Added, Zones: zones}
		}
	case "Changed":
		events, err := model.ParseZonesChanged(resp.Body)
		if err != nil {
			log.Printf("roonkit: failed to parse zones_changed: %v", err)
			return
		}
		for _, ev := range events {
			out <- ev
		}
	}
}

// SubscribeOutputs is SubscribeZones's counterpart for outputs.
func (s *Service) SubscribeOutputs() (<-chan model.OutputEvent, func(), error) {
	out := make(chan model.OutputEvent, 16)

	raw, rawCancel, err := s.conn.Subscribe(servicePath+"/subscribe_outputs", nil, func() {
		s.conn.Send(servicePath+"/unsubscribe_outputs", nil, 0)
	})
	if err != nil {
		close(out)
		return out, func() {}, err
	}

	myKey := s.outputs.claim(rawCancel)

	go func() {
		defer close(out)
		defer s.outputs.release(myKey)
		for resp := range raw {
			dispatchOutputFrame(resp, out)
		}
	}()

	return out, func() { s.outputs.release(myKey); rawCancel() }, nil
}

func dispatchOutputFrame(resp *codec.Response, out chan<- model.OutputEvent) {
	switch resp.Name {
	case "Subscribed":
		outputs, err := model.ParseOutputList(asSlice(resp.Body["outputs"]))
		if err != nil {
			log.Printf("roonkit: failed to parse outputs snapshot: %v", err)
			return
		}
		if len(outputs) > 0 {
			out <- model.OutputEvent{Kind: model.Added, Outputs: outputs}
		}
	case "Changed":
		events, err := model.ParseOutputsChanged(resp.Body)
		if err != nil {
			log.Printf("roonkit: failed to parse outputs_changed: %v", err)
			return
		}
		for _, ev := range events {
			out <- ev
		}
	}
}

// QueueEvent is one queue update: either the initial full snapshot or
// an incremental change, per spec.md §4.4.10's note that current
// servers only ever send the snapshot but incremental variants must
// still be handled if they appear.
type QueueEvent struct {
	Snapshot []model.QueueItem
	Changes  []model.QueueChangeOperation
}

// SubscribeQueue opens the active queue subscription for one
// zone_or_output_id. The active slot is scoped per target id, so
// subscribing to a different zone's queue does not disturb this one;
// subscribing again to the same id finishes the previous subscription
// first, per the same latest-wins contract as zones/outputs.
func (s *Service) SubscribeQueue(zoneOrOutputID string, maxItemCount int) (<-chan QueueEvent, func(), error) {
	out := make(chan QueueEvent, 16)
	slot := s.queues.get(zoneOrOutputID)

	body := map[string]interface{}{"zone_or_output_id": zoneOrOutputID}
	if maxItemCount > 0 {
		body["max_item_count"] = maxItemCount
	}

	raw, rawCancel, err := s.conn.Subscribe(servicePath+"/subscribe_queue", body, func() {
		s.conn.Send(servicePath+"/unsubscribe_queue", map[string]interface{}{"zone_or_output_id": zoneOrOutputID}, 0)
	})
	if err != nil {
		close(out)
		return out, func() {}, err
	}

	myKey := slot.claim(rawCancel)

	go func() {
		defer close(out)
		defer slot.release(myKey)
		for resp := range raw {
			dispatchQueueFrame(resp, out)
		}
	}()

	return out, func() { slot.release(myKey); rawCancel() }, nil
}

func dispatchQueueFrame(resp *codec.Response, out chan<- QueueEvent) {
	switch resp.Name {
	case "Subscribed":
		items, err := model.ParseQueueItems(asSlice(resp.Body["items"]))
		if err != nil {
			log.Printf("roonkit: failed to parse queue snapshot: %v", err)
			return
		}
		out <- QueueEvent{Snapshot: items}
	case "Changed":
		changes, err := model.ParseQueueChanges(resp.Body)
		if err != nil {
			log.Printf("roonkit: failed to parse queue changes: %v", err)
			return
		}
		if len(changes) > 0 {
			out <- QueueEvent{Changes: changes}
		}
	}
}
