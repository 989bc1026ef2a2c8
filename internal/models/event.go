package models

import "encoding/json"

// Auth0Event is one entry of an Auth0 log-stream webhook batch.
// The request/response bodies are kept raw; the classifier decodes only what it needs.
type Auth0Event struct {
	Request  Auth0Request  `json:"request"`
	Response Auth0Response `json:"response"`
}

type Auth0Request struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Body   json.RawMessage `json:"body,omitempty"`
}

type Auth0Response struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// OktaHookPayload is the POST body of an Okta event hook delivery.
type OktaHookPayload struct {
	EventType string `json:"eventType,omitempty"`
	Data      struct {
		Events []OktaEvent `json:"events"`
	} `json:"data"`
}

// OktaEvent is a single System Log event inside an event hook delivery.
// UUID is unique per event and stable across redeliveries.
type OktaEvent struct {
	UUID         string           `json:"uuid"`
	EventType    string           `json:"eventType"`
	Target       []OktaTarget     `json:"target"`
	Outcome      OktaOutcome      `json:"outcome"`
	DebugContext OktaDebugContext `json:"debugContext"`
}

type OktaTarget struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AlternateID string `json:"alternateId"`
	DisplayName string `json:"displayName"`
}

type OktaOutcome struct {
	Result string `json:"result"`
	Reason string `json:"reason,omitempty"`
}

type OktaDebugContext struct {
	DebugData map[string]any `json:"debugData,omitempty"`
}
