package viaplay

import "time"

const DefaultPollInterval = 5 * time.Second

// ActivationData is what the user needs to authorize this device on the
// verification page.
type ActivationData struct {
	UserCode        string
	DeviceToken     string
	VerificationURL string
	Expires         time.Time
	Interval        time.Duration
	Raw             *Object
}

type UserData struct {
	ID    string
	Token string
}

type Profile struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Avatar string `json:"avatar"`
	Type   string `json:"type"`
	Owner  string `json:"owner"`
	Lang   string `json:"lang"`
}
