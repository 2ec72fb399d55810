package ipc

import (
	"encoding/json"
	"fmt"
)

// Requests and responses travel as a tagged JSON envelope:
// {"type": "...", "data": {...}}. Variants without a payload omit the
// data field entirely so serialization stays byte-stable across round
// trips.

// Request is a control-channel request variant
type Request interface {
	requestType() string
}

// GetStatus asks for the daemon's current state
type GetStatus struct{}

// SetProfile switches the active profile
type SetProfile struct {
	Name string `json:"name"`
}

// SetManualBrightness sets a manual override and applies it immediately
type SetManualBrightness struct {
	Brightness int `json:"brightness"`
}

// ClearManualOverride removes the manual override; the next tick decides
type ClearManualOverride struct{}

// ListProfiles asks for all profile names
type ListProfiles struct{}

// AddTimeSchedule appends a schedule entry to a profile
type AddTimeSchedule struct {
	Profile    string `json:"profile"`
	Hour       uint8  `json:"hour"`
	Minute     uint8  `json:"minute"`
	Brightness int    `json:"brightness"`
}

// Shutdown asks the daemon to terminate
type Shutdown struct{}

func (GetStatus) requestType() string           { return "get_status" }
func (SetProfile) requestType() string          { return "set_profile" }
func (SetManualBrightness) requestType() string { return "set_manual_brightness" }
func (ClearManualOverride) requestType() string { return "clear_manual_override" }
func (ListProfiles) requestType() string        { return "list_profiles" }
func (AddTimeSchedule) requestType() string     { return "add_time_schedule" }
func (Shutdown) requestType() string            { return "shutdown" }

// Response is a control-channel response variant
type Response interface {
	responseType() string
}

// Status reports the daemon's current state
type Status struct {
	ActiveProfile  string `json:"active_profile"`
	Brightness     int    `json:"brightness"`
	IsIdle         bool   `json:"is_idle"`
	IsFullscreen   bool   `json:"is_fullscreen"`
	ManualOverride *int   `json:"manual_override"`
}

// ProfileChanged acknowledges a profile switch
type ProfileChanged struct {
	Name string `json:"name"`
}

// BrightnessSet acknowledges a manual brightness change
type BrightnessSet struct {
	Brightness int `json:"brightness"`
}

// ProfileList carries all profile names
type ProfileList struct {
	Profiles []string `json:"profiles"`
}

// ScheduleAdded acknowledges a schedule append
type ScheduleAdded struct{}

// Error carries a human-readable failure reason
type Error struct {
	Message string `json:"message"`
}

// OK is the generic success response
type OK struct{}

func (Status) responseType() string         { return "status" }
func (ProfileChanged) responseType() string { return "profile_changed" }
func (BrightnessSet) responseType() string  { return "brightness_set" }
func (ProfileList) responseType() string    { return "profile_list" }
func (ScheduleAdded) responseType() string  { return "schedule_added" }
func (Error) responseType() string          { return "error" }
func (OK) responseType() string             { return "ok" }

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func marshalEnvelope(typ string, payload interface{}) ([]byte, error) {
	env := envelope{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// MarshalRequest encodes a request into its wire payload
func MarshalRequest(r Request) ([]byte, error) {
	switch v := r.(type) {
	case GetStatus, ClearManualOverride, ListProfiles, Shutdown:
		return marshalEnvelope(r.requestType(), nil)
	case SetProfile:
		return marshalEnvelope(r.requestType(), v)
	case SetManualBrightness:
		return marshalEnvelope(r.requestType(), v)
	case AddTimeSchedule:
		return marshalEnvelope(r.requestType(), v)
	default:
		return nil, fmt.Errorf("unknown request type %T", r)
	}
}

// UnmarshalRequest decodes a wire payload into a request
func UnmarshalRequest(data []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	switch env.Type {
	case "get_status":
		return GetStatus{}, nil
	case "set_profile":
		var v SetProfile
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed set_profile payload: %w", err)
		}
		return v, nil
	case "set_manual_brightness":
		var v SetManualBrightness
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed set_manual_brightness payload: %w", err)
		}
		return v, nil
	case "clear_manual_override":
		return ClearManualOverride{}, nil
	case "list_profiles":
		return ListProfiles{}, nil
	case "add_time_schedule":
		var v AddTimeSchedule
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed add_time_schedule payload: %w", err)
		}
		return v, nil
	case "shutdown":
		return Shutdown{}, nil
	default:
		return nil, fmt.Errorf("unknown request type %q", env.Type)
	}
}

// MarshalResponse encodes a response into its wire payload
func MarshalResponse(r Response) ([]byte, error) {
	switch v := r.(type) {
	case ScheduleAdded, OK:
		return marshalEnvelope(r.responseType(), nil)
	case Status:
		return marshalEnvelope(r.responseType(), v)
	case ProfileChanged:
		return marshalEnvelope(r.responseType(), v)
	case BrightnessSet:
		return marshalEnvelope(r.responseType(), v)
	case ProfileList:
		return marshalEnvelope(r.responseType(), v)
	case Error:
		return marshalEnvelope(r.responseType(), v)
	default:
		return nil, fmt.Errorf("unknown response type %T", r)
	}
}

// UnmarshalResponse decodes a wire payload into a response
func UnmarshalResponse(data []byte) (Response, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	switch env.Type {
	case "status":
		var v Status
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed status payload: %w", err)
		}
		return v, nil
	case "profile_changed":
		var v ProfileChanged
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed profile_changed payload: %w", err)
		}
		return v, nil
	case "brightness_set":
		var v BrightnessSet
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed brightness_set payload: %w", err)
		}
		return v, nil
	case "profile_list":
		var v ProfileList
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed profile_list payload: %w", err)
		}
		return v, nil
	case "schedule_added":
		return ScheduleAdded{}, nil
	case "error":
		var v Error
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return nil, fmt.Errorf("malformed error payload: %w", err)
		}
		return v, nil
	case "ok":
		return OK{}, nil
	default:
		return nil, fmt.Errorf("unknown response type %q", env.Type)
	}
}
