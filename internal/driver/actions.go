package driver

import (
	"encoding/json"
	"fmt"
)

// ActionSequence is one input source in a W3C action payload.
type ActionSequence struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Parameters *ActionParameters `json:"parameters,omitempty"`
	Actions    []Action          `json:"actions"`
}

// ActionParameters carries the pointer type of a pointer sequence.
type ActionParameters struct {
	PointerType string `json:"pointerType"`
}

// Action is a single step within a sequence. Zero coordinates serialize;
// pointer moves to the origin are valid and the backends ignore fields a
// step type does not use.
type Action struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Button   int    `json:"button"`
	Origin   string `json:"origin,omitempty"`
}

// toSequences adapts the loose action shape to the strictly-typed W3C shape
// the remote protocol requires. The round trip through JSON is the same
// coercion the native drivers apply server-side.
func toSequences(actions []interface{}) ([]ActionSequence, error) {
	data, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("encode actions: %w", err)
	}
	var seqs []ActionSequence
	if err := json.Unmarshal(data, &seqs); err != nil {
		return nil, fmt.Errorf("invalid action sequence: %w", err)
	}
	return seqs, nil
}

// SwipeActions builds the loose single-finger pointer sequence for a swipe
// gesture: press at the start point, move to the end point over durationMs,
// release. The result feeds PerformActions on any variant.
func SwipeActions(startX, startY, endX, endY, durationMs int) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"type":       "pointer",
			"id":         "finger1",
			"parameters": map[string]interface{}{"pointerType": "touch"},
			"actions": []interface{}{
				map[string]interface{}{"type": "pointerMove", "duration": 0, "x": startX, "y": startY},
				map[string]interface{}{"type": "pointerDown", "button": 0},
				map[string]interface{}{"type": "pointerMove", "duration": durationMs, "x": endX, "y": endY},
				map[string]interface{}{"type": "pointerUp", "button": 0},
			},
		},
	}
}
