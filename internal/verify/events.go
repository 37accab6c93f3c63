package verify

import (
	"bytes"
	"encoding/json"
	"strconv"
	"unicode/utf8"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
)

// wireEvent mirrors core.InputEvent with every field optional so that
// missing fields can be told apart from zero values.
type wireEvent struct {
	Tick    *json.RawMessage `json:"tick"`
	Key     *string          `json:"key"`
	Pressed *bool            `json:"pressed"`
}

// ParseEvents validates and decodes a submitted input log. The log must be
// a JSON array of at most rules.MaxInputEvents objects, each with exactly
// an integer tick in [0, rules.MaxTick], a key of 1 to core.MaxKeyLength
// characters and a boolean pressed. One malformed element rejects the
// whole log. The element count is checked before any element is decoded.
func ParseEvents(raw json.RawMessage, rules config.Rules) ([]core.InputEvent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, reject(KindValidation, ErrInvalidEvents, "not a JSON array")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, reject(KindValidation, ErrInvalidEvents, "malformed array: %v", err)
	}
	if len(elems) > rules.MaxInputEvents {
		return nil, reject(KindValidation, ErrTooManyEvents, "%d events, limit %d", len(elems), rules.MaxInputEvents)
	}

	events := make([]core.InputEvent, 0, len(elems))
	for i, elem := range elems {
		ev, err := decodeEvent(elem, rules)
		if err != nil {
			return nil, reject(KindValidation, ErrInvalidEvents, "event %d: %v", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

func decodeEvent(elem json.RawMessage, rules config.Rules) (core.InputEvent, error) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 || elem[0] != '{' {
		return core.InputEvent{}, fieldError("not an object")
	}

	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.DisallowUnknownFields()

	var w wireEvent
	if err := dec.Decode(&w); err != nil {
		return core.InputEvent{}, err
	}

	if w.Tick == nil || w.Key == nil || w.Pressed == nil {
		return core.InputEvent{}, fieldError("missing field")
	}

	// ParseInt on the raw literal rejects strings, fractions and exponents
	tick, err := strconv.ParseInt(string(*w.Tick), 10, 64)
	if err != nil {
		return core.InputEvent{}, fieldError("tick is not an integer")
	}
	if tick < 0 || tick > int64(rules.MaxTick) {
		return core.InputEvent{}, fieldError("tick out of range")
	}

	if n := utf8.RuneCountInString(*w.Key); n == 0 || n > core.MaxKeyLength {
		return core.InputEvent{}, fieldError("key length out of range")
	}

	return core.InputEvent{Tick: int(tick), Key: *w.Key, Pressed: *w.Pressed}, nil
}
