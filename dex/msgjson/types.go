// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package msgjson defines the JSON messages exchanged with websocket clients.
package msgjson

import (
	"encoding/json"
	"fmt"

	"github.com/setlife-network/zeus/dex"
)

// Error codes
const (
	RPCErrorUnspecified = iota // 0
	RPCParseError              // 1
	RPCUnknownRoute            // 2
	RPCInternal                // 3
	RPCArgumentsError          // 4
	UnknownMessageType         // 5
	RPCFiatDisabled            // 6
	RPCFiatRatesUnavailable    // 7
)

// Routes are destinations for a "payload" of data. The route designation is
// a string sent as the "route" parameter of a JSON-encoded Message.
const (
	// UnitsRoute is the route of a client request for the current display
	// unit, and of the server notification sent when the unit changes. The
	// payload of both the result and the notification is the unit string.
	UnitsRoute = "units"
	// CycleUnitsRoute is the route of a client request to advance the display
	// unit. The result is the new unit.
	CycleUnitsRoute = "cycle_units"
	// ResetUnitsRoute is the route of a client request to set the display
	// unit back to sats. The result is the new unit.
	ResetUnitsRoute = "reset_units"
	// AmountRoute is the route of a client request to render an amount. The
	// payload is an AmountRequest and the result an AmountResult.
	AmountRoute = "amount"
	// RatesRoute is the route of the server notification sent when new fiat
	// rates are available.
	RatesRoute = "rates"
)

const errNullRespPayload = dex.ErrorKind("null response payload")

// Error is returned as part of the Response to indicate that an error
// occurred during method execution.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error returns the error message. Satisfies the error interface.
func (e *Error) Error() string {
	return e.String()
}

// String satisfies the Stringer interface for pretty printing.
func (e Error) String() string {
	return fmt.Sprintf("error code %d: %s", e.Code, e.Message)
}

// NewError is a constructor for an Error.
func NewError(code int, format string, a ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, a...),
	}
}

// ResponsePayload is the payload for a Response-type Message.
type ResponsePayload struct {
	// Result is the payload, if successful, else nil.
	Result json.RawMessage `json:"result,omitempty"`
	// Error is the error, or nil if none was encountered.
	Error *Error `json:"error,omitempty"`
}

// MessageType indicates the type of message.
type MessageType uint8

// There are presently three recognized message types: request, response, and
// notification.
const (
	InvalidMessageType MessageType = iota // 0
	Request                               // 1
	Response                              // 2
	Notification                          // 3
)

// String satisfies the Stringer interface for translating the MessageType code
// into a description, primarily for logging.
func (mt MessageType) String() string {
	switch mt {
	case Request:
		return "request"
	case Response:
		return "response"
	case Notification:
		return "notification"
	default:
		return "unknown MessageType"
	}
}

// Message is the primary messaging type for websocket communications.
type Message struct {
	Type MessageType `json:"type"`
	// Route is used for requests and notifications, and specifies a handler for
	// the message.
	Route string `json:"route,omitempty"`
	// ID links a response to a request.
	ID uint64 `json:"id,omitempty"`
	// Payload is any data attached to the message. How Payload is decoded
	// depends on the Route.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeMessage decodes a *Message from JSON-formatted bytes.
func DecodeMessage(b []byte) (*Message, error) {
	msg := new(Message)
	if err := json.Unmarshal(b, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// NewRequest is the constructor for a Request-type *Message.
func NewRequest(id uint64, route string, payload any) (*Message, error) {
	if id == 0 {
		return nil, fmt.Errorf("id = 0 not allowed for a request-type message")
	}
	if route == "" {
		return nil, fmt.Errorf("empty string not allowed for route of request-type message")
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    Request,
		Payload: encoded,
		Route:   route,
		ID:      id,
	}, nil
}

// NewResponse encodes the result and creates a Response-type *Message.
func NewResponse(id uint64, result any, rpcErr *Error) (*Message, error) {
	if id == 0 {
		return nil, fmt.Errorf("id = 0 not allowed for response-type message")
	}
	encResult, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	encResp, err := json.Marshal(&ResponsePayload{
		Result: encResult,
		Error:  rpcErr,
	})
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    Response,
		Payload: encResp,
		ID:      id,
	}, nil
}

// Response decodes the payload of a Response-type Message.
func (msg *Message) Response() (*ResponsePayload, error) {
	if msg.Type != Response {
		return nil, fmt.Errorf("invalid type %d for ResponsePayload", msg.Type)
	}
	var resp *ResponsePayload
	if err := json.Unmarshal(msg.Payload, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errNullRespPayload
	}
	return resp, nil
}

// NewNotification encodes the payload and creates a Notification-type *Message.
func NewNotification(route string, payload any) (*Message, error) {
	if route == "" {
		return nil, fmt.Errorf("empty string not allowed for route of notification-type message")
	}
	encPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    Notification,
		Route:   route,
		Payload: encPayload,
	}, nil
}

// Unmarshal unmarshals the Payload field into the provided interface, which
// must be a pointer.
func (msg *Message) Unmarshal(payload any) error {
	return json.Unmarshal(msg.Payload, payload)
}

// UnmarshalResult decodes the Result field of a Response-type Message.
func (msg *Message) UnmarshalResult(result any) error {
	resp, err := msg.Response()
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("rpc error: %w", resp.Error)
	}
	return json.Unmarshal(resp.Result, result)
}

// String prints the message as a JSON-encoded string.
func (msg *Message) String() string {
	b, err := json.Marshal(msg)
	if err != nil {
		return "[Message decode error]"
	}
	return string(b)
}

// AmountRequest is the payload of an AmountRoute request. Value is a textual
// satoshi amount. Unit is optional.
type AmountRequest struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}
