package viaplay

import (
	"strings"
	"time"
)

type Status string

const (
	StatusLive     Status = "live"
	StatusUpcoming Status = "upcoming"
	StatusArchive  Status = "archive"
)

// ParseStatus accepts the CLI spelling of an event status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusLive, StatusUpcoming, StatusArchive:
		return st, true
	}
	return "", false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTime reads the ISO 8601 variants the service emits. Values without a
// zone are UTC.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// eventInterval picks the first available start/end pair from
// epg.startTime/endTime, epg.start/end or system.availability.start/end.
func eventInterval(data *Object) (start, end time.Time, ok bool) {
	var rawStart, rawEnd string
	switch epg := data.Obj("epg"); {
	case epg.Len() > 0 && epg.Truthy("startTime"):
		rawStart, rawEnd = epg.String("startTime"), epg.String("endTime")
	case epg.Len() > 0:
		rawStart, rawEnd = epg.String("start"), epg.String("end")
	default:
		avail := data.Path("system", "availability")
		rawStart, rawEnd = avail.String("start"), avail.String("end")
	}

	start, okStart := parseTime(rawStart)
	end, okEnd := parseTime(rawEnd)
	return start, end, okStart && okEnd
}

// EventStatus classifies a product or programme against now. The isLive flag
// wins over timestamps; products without a usable interval are archive.
func EventStatus(data *Object, now time.Time) Status {
	if hasFlag(data, "isLive") {
		return StatusLive
	}

	start, end, ok := eventInterval(data)
	if !ok {
		return StatusArchive
	}

	switch {
	case !now.Before(start) && now.Before(end):
		return StatusLive
	case !start.Before(now):
		return StatusUpcoming
	}
	return StatusArchive
}

// airingAt reports whether the programme's epg interval contains t, bounds
// included.
func airingAt(event *Object, t time.Time) bool {
	epg := event.Obj("epg")
	start, okStart := parseTime(epg.String("startTime"))
	end, okEnd := parseTime(epg.String("endTime"))
	if !okStart || !okEnd {
		return false
	}
	return !t.Before(start) && !t.After(end)
}
