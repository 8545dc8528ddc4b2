package viaplay

import (
	"strconv"
	"strings"
	"time"
)

// Page is one entry of the root navigation.
type Page struct {
	Name  string
	Title string
	Href  string
	Link  *Object
}

type ProductQuery struct {
	// FilterEvent keeps only products whose status is listed. Empty keeps all.
	FilterEvent []Status
	Search      string
}

type ProductPage struct {
	Products []*Object
	NextPage string
	HasNext  bool
}

type ChannelPage struct {
	Channels []Channel
	NextPage string
	HasNext  bool
}

// Channel is the projection of a viaplay:channel block.
type Channel struct {
	GUID          string
	Title         string
	ChannelNumber *int
	LogoTemplate  string
	Events        []*Object
	Raw           *Object
}

func NewChannel(obj *Object) Channel {
	ch := Channel{
		GUID:         obj.Obj("system").String("channelGuid"),
		Title:        obj.Obj("content").String("title"),
		LogoTemplate: obj.Path("content", "images", "fallback").String("template"),
		Events:       obj.Obj("_embedded").Objects("viaplay:products"),
		Raw:          obj,
	}
	if n, err := strconv.Atoi(obj.Obj("content").String("channelNumber")); err == nil {
		ch.ChannelNumber = &n
	}
	return ch
}

// Logo strips the image template parameters.
func (c Channel) Logo() string {
	return stripTemplate(c.LogoTemplate)
}

// EPGEvent is one programme of a channel schedule.
type EPGEvent struct {
	GUID        string
	Start       string
	Stop        string
	Title       string
	Description string
	Image       string
}

func NewEPGEvent(obj *Object) EPGEvent {
	content := obj.Obj("content")
	return EPGEvent{
		GUID:        obj.Obj("system").String("guid"),
		Start:       obj.Obj("epg").String("startTime"),
		Stop:        obj.Obj("epg").String("endTime"),
		Title:       content.String("title"),
		Description: content.String("synopsis"),
		Image:       stripTemplate(content.Path("images", "landscape").String("template")),
	}
}

// ProductSummary is a flat view of a product for listings.
type ProductSummary struct {
	GUID   string `json:"guid"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Href   string `json:"href,omitempty"`
}

func Summarize(p *Object, now time.Time) ProductSummary {
	content := p.Obj("content")
	title := content.String("title")
	if title == "" {
		title = content.Obj("series").String("title")
	}

	href := p.Path("_links", "viaplay:page").String("href")
	if href == "" {
		href = p.Path("_links", "self").String("href")
	}

	return ProductSummary{
		GUID:   p.Obj("system").String("guid"),
		Type:   p.String("type"),
		Title:  title,
		Status: productStatus(p, now),
		Href:   href,
	}
}

func stripTemplate(s string) string {
	before, _, _ := strings.Cut(s, "{")
	return before
}
