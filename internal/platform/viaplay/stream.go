package viaplay

import (
	"context"
	"fmt"

	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
)

// Stream resolves the manifest, license and subtitle URLs for guid. Channel
// guids are first mapped to the programme airing now.
func (c *Client) Stream(ctx context.Context, guid string, opts StreamOptions) (*Stream, error) {
	if IsChannelGUID(guid) {
		mediaGUID, err := c.currentChannelGUID(ctx, guid)
		if err != nil {
			return nil, err
		}
		guid = mediaGUID
	}

	deviceID, err := c.store.DeviceID()
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"deviceId":   deviceID,
		"deviceName": DeviceName,
		"deviceType": DeviceType,
		"userAgent":  UserAgent,
		"deviceKey":  "chromecast-" + c.cfg.Country,
		"mediaGuid":  guid,
	}
	if opts.PinCode != "" {
		params["pgPin"] = opts.PinCode
	}
	if opts.TVE {
		params["isTve"] = "true"
	}

	data, err := c.getJSON(ctx, c.endpoints.Play+"/stream/bymediaguid", params)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stream: %w", err)
	}

	links := data.Obj("_links")
	stream := &Stream{}
	for _, key := range manifestLinks {
		if !links.Has(key) {
			continue
		}
		if key == "viaplay:fallbackMedia" {
			if fallback := links.Objects(key); len(fallback) > 0 {
				stream.MPDURL = fallback[0].String("href")
			}
		} else {
			stream.MPDURL = links.Obj(key).String("href")
		}
		break
	}
	if stream.MPDURL == "" {
		c.log.Warn().Str(vlog.FieldGUID, guid).Msg("failed to retrieve stream url")
		return nil, ErrNoStreamURL
	}

	license := links.Obj("viaplay:license")
	stream.LicenseURL = license.String("href")
	stream.ReleasePID = license.String("releasePid")

	for _, sub := range links.Objects("viaplay:sami") {
		stream.Subtitles = append(stream.Subtitles, sub.String("href"))
	}

	return stream, nil
}

// currentChannelGUID maps a channel guid to "<programme guid>-<CC>" for the
// programme whose schedule slot contains now. Without one the channel guid is
// returned unchanged.
func (c *Client) currentChannelGUID(ctx context.Context, channelGUID string) (string, error) {
	events, err := c.ChannelEPG(ctx, channelGUID)
	if err != nil {
		return "", fmt.Errorf("failed to load channel schedule: %w", err)
	}

	now := c.now()
	for _, ev := range events {
		if airingAt(ev, now) {
			guid := ev.Obj("system").String("guid") + "-" + c.cfg.CountryUpper()
			c.log.Debug().Str(vlog.FieldGUID, guid).Str("channel", channelGUID).Msg("channel mapped to programme")
			return guid, nil
		}
	}
	c.log.Debug().Str("channel", channelGUID).Msg("no programme airing, resolving channel guid as is")
	return channelGUID, nil
}
