package client

import (
	"encoding/json"
	"errors"
)

// Envelope is the event API's generic response wrapper.
//
// The API has used both "success" and "status" for the boolean flag; either
// sets Success. Raw keeps the body exactly as received so callers can relay it.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`

	StatusCode int    `json:"-"`
	Raw        []byte `json:"-"`
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	type plain Envelope
	aux := struct {
		*plain
		Status *bool `json:"status"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Status != nil && *aux.Status {
		e.Success = true
	}
	return nil
}

// DecodeData unmarshals the data member into v.
func (e *Envelope) DecodeData(v interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return errors.New("envelope has no data")
	}
	return json.Unmarshal(e.Data, v)
}
