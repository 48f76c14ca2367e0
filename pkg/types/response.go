// Package types holds the JSON envelopes shared by the marketplace API and its client SDK.
package types

import "encoding/json"

// SuccessEnvelope wraps every 2xx payload as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of a failed response. For validation failures Details
// maps each rejected field to its reason.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RawSuccessEnvelope is the decoding side of SuccessEnvelope. Data stays raw
// until the caller picks the listing, profile or item type to decode into.
type RawSuccessEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// RawErrorEnvelope keeps Details undecoded so clients can restore them unchanged.
type RawErrorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}
