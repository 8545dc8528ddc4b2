package viaplay

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
)

// ValidateSession asks the persistent-login endpoint to accept (and refresh)
// the current cookies. It never goes through the retry wrapper.
func (c *Client) ValidateSession(ctx context.Context) error {
	c.setState(StateAuthenticating)

	resp, err := c.do(ctx, Request{
		URL:    c.endpoints.Login + "/persistentLogin/v1",
		Method: MethodGet,
		Params: map[string]string{"deviceKey": c.DeviceKey()},
	})
	if err != nil {
		if IsServiceError(err) {
			c.setState(StateFailed)
		}
		return err
	}

	c.captureUser(resp)
	c.setState(StateAuthenticated)
	return nil
}

func (c *Client) captureUser(resp *Response) (UserData, bool) {
	ud := resp.Data.Obj("userData")
	user := UserData{ID: ud.String("userId"), Token: ud.String("accessToken")}
	if user.ID == "" {
		return user, false
	}
	c.session.SetUser(user.ID, user.Token)
	return user, true
}

// GetActivationData requests a user code for device activation.
func (c *Client) GetActivationData(ctx context.Context) (*ActivationData, error) {
	deviceID, err := c.store.DeviceID()
	if err != nil {
		return nil, err
	}

	resp, err := c.MakeRequest(ctx, Request{
		URL:    c.endpoints.Login + "/device/code",
		Method: MethodGet,
		Params: map[string]string{
			"deviceKey": c.DeviceKey(),
			"deviceId":  deviceID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get activation data: %w", err)
	}
	if !resp.IsJSON() {
		return nil, ErrUnexpectedResponse
	}

	data := &ActivationData{
		UserCode:        resp.Data.String("userCode"),
		DeviceToken:     resp.Data.String("deviceToken"),
		VerificationURL: resp.Data.String("verificationUrl"),
		Interval:        DefaultPollInterval,
		Raw:             resp.Data,
	}
	if data.UserCode == "" || data.DeviceToken == "" {
		return nil, ErrUnexpectedResponse
	}
	if secs, err := strconv.Atoi(resp.Data.String("interval")); err == nil && secs > 0 {
		data.Interval = time.Duration(secs) * time.Second
	}
	if t, ok := parseTime(resp.Data.String("expires")); ok {
		data.Expires = t
	}

	return data, nil
}

// AuthorizeDevice checks once whether the user has entered the code. On
// success the new cookies are confirmed with ValidateSession. A ServiceError
// means the code has not been entered yet; polling is the caller's job.
func (c *Client) AuthorizeDevice(ctx context.Context, data *ActivationData) error {
	deviceID, err := c.store.DeviceID()
	if err != nil {
		return err
	}

	c.setState(StateAuthenticating)
	_, err = c.do(ctx, Request{
		URL:    c.endpoints.Login + "/device/authorized",
		Method: MethodGet,
		Params: map[string]string{
			"deviceId":    deviceID,
			"deviceToken": data.DeviceToken,
			"userCode":    data.UserCode,
		},
	})
	if err != nil {
		return err
	}

	return c.ValidateSession(ctx)
}

// LogOut ends the session remotely and forgets the local cookies.
func (c *Client) LogOut(ctx context.Context) error {
	resp, err := c.MakeRequest(ctx, Request{
		URL:    c.endpoints.Login + "/logout/v1",
		Method: MethodGet,
		Params: map[string]string{"deviceKey": c.DeviceKey()},
	})
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	if resp.Empty() {
		return nil
	}

	if err := c.store.DeleteSession(); err != nil {
		return err
	}
	c.session.Clear()
	c.setState(StateUnauthenticated)
	c.log.Info().Msg("logged out")
	return nil
}

// UserID returns the account id and access token of the logged in user.
func (c *Client) UserID(ctx context.Context) (UserData, error) {
	resp, err := c.MakeRequest(ctx, Request{
		URL:    c.endpoints.Login + "/persistentLogin/v1",
		Method: MethodGet,
		Params: map[string]string{"deviceKey": c.DeviceKey()},
	})
	if err != nil {
		return UserData{}, err
	}

	user, ok := c.captureUser(resp)
	if !ok {
		return UserData{}, ErrUnexpectedResponse
	}
	return user, nil
}

func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	user, err := c.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	resp, err := c.MakeRequest(ctx, Request{
		URL:     fmt.Sprintf("%s/user-profiles/users/%s/profiles/", c.endpoints.Profile, user.ID),
		Method:  MethodGet,
		Params:  map[string]string{"language": "en"},
		Headers: map[string]string{"authorization": "MTG-AT " + user.Token},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}

	entries := resp.Data.Obj("embedded").Objects("profiles")
	profiles := make([]Profile, 0, len(entries))
	for _, p := range entries {
		data := p.Obj("data")
		profile := Profile{
			Name:   data.String("name"),
			ID:     data.String("id"),
			Avatar: p.Path("embedded", "avatar", "data").String("url"),
			Type:   data.String("type"),
			Lang:   strings.ToUpper(data.String("language")),
		}
		if data.Truthy("isOwner") {
			profile.Owner = "Owner"
		}
		profiles = append(profiles, profile)
	}

	c.log.Debug().Int("count", len(profiles)).Str(vlog.FieldURL, c.endpoints.Profile).Msg("profiles loaded")
	return profiles, nil
}
