package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

// WithID pairs an entity with its id. It serializes as a single flat JSON
// object with "id" first.
type WithID[D any] struct {
	ID   ID
	Data D
}

func (w WithID[D]) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(w.Data)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, errors.New("entity must serialize to a JSON object")
	}

	out := make([]byte, 0, len(body)+16)
	out = append(out, `{"id":`...)
	out = strconv.AppendUint(out, uint64(w.ID), 10)
	if len(body) > 2 {
		out = append(out, ',')
	}
	return append(out, body[1:]...), nil
}

func (w *WithID[D]) UnmarshalJSON(b []byte) error {
	var head struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	var data D
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	w.ID, w.Data = head.ID, data
	return nil
}
