package viaplay

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	vlog "github.com/PiotrWarzachowski/go-viaplay-cli/internal/log"
)

var rootBlacklist = []string{"byGuid"}

func (c *Client) getJSON(ctx context.Context, rawURL string, params map[string]string) (*Object, error) {
	resp, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	if !resp.IsJSON() {
		return nil, ErrUnexpectedResponse
	}
	return resp.Data, nil
}

// RootPage flattens the content root's _links into navigation pages.
func (c *Client) RootPage(ctx context.Context) ([]Page, error) {
	data, err := c.getJSON(ctx, c.endpoints.Content, nil)
	if err != nil {
		return nil, err
	}
	if !data.Has("user") {
		return nil, ErrMissingSessionCookie
	}

	links := data.Obj("_links")
	var pages []Page
	for _, key := range links.Keys() {
		v, _ := links.Get(key)
		switch link := v.(type) {
		case *Object:
			if !link.Has("title") {
				continue
			}
			title := link.String("title")
			if slices.Contains(rootBlacklist, key) || slices.Contains(rootBlacklist, title) {
				continue
			}
			link.Set("name", key)
			pages = append(pages, Page{Name: key, Title: title, Href: link.String("href"), Link: link})
		case []any:
			for _, item := range link {
				entry, ok := item.(*Object)
				if !ok || !entry.Has("title") {
					continue
				}
				pages = append(pages, Page{
					Name:  entry.String("name"),
					Title: entry.String("title"),
					Href:  entry.String("href"),
					Link:  entry,
				})
			}
		}
	}

	return pages, nil
}

// Collections returns the blocks of a page whose type contains "list".
func (c *Client) Collections(ctx context.Context, rawURL string) ([]*Object, error) {
	data, err := c.getJSON(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	var out []*Object
	for _, block := range blocks(data) {
		if strings.Contains(strings.ToLower(block.String("type")), "list") {
			out = append(out, block)
		}
	}
	return out, nil
}

// Products lists the products of a page. The shape depends on the page type.
func (c *Client) Products(ctx context.Context, rawURL string, q ProductQuery) (*ProductPage, error) {
	var params map[string]string
	if q.Search != "" {
		params = map[string]string{"query": q.Search}
	}

	data, err := c.getJSON(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}

	var products []*Object
	switch typ := data.String("type"); {
	case strings.Contains(strings.ToLower(typ), "list"):
		products = data.Obj("_embedded").Objects("viaplay:products")
	case typ == "tvChannel":
		for _, p := range data.Obj("_embedded").Objects("viaplay:products") {
			if !hasFlag(p, "nobroadcast") {
				products = append(products, p)
			}
		}
	case typ == "product":
		if p := data.Obj("_embedded").Obj("viaplay:product"); p != nil {
			products = []*Object{p}
		}
	default:
		products = blockProducts(data)
	}

	if len(q.FilterEvent) > 0 {
		now := c.now()
		products = slices.DeleteFunc(products, func(p *Object) bool {
			return !slices.Contains(q.FilterEvent, productStatus(p, now))
		})
	}

	page := &ProductPage{Products: products}
	page.NextPage, page.HasNext = NextPage(data)
	c.log.Debug().Str(vlog.FieldURL, rawURL).Int("count", len(products)).Bool("has_next", page.HasNext).Msg("products")
	return page, nil
}

// Channels lists the live channels of a channel page.
func (c *Client) Channels(ctx context.Context, rawURL string) (*ChannelPage, error) {
	data, err := c.getJSON(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	page := &ChannelPage{}
	outer := blocks(data)
	if len(outer) > 0 {
		for _, block := range blocks(outer[0]) {
			if ch := block.Obj("viaplay:channel"); ch != nil {
				page.Channels = append(page.Channels, NewChannel(ch))
			}
		}
	}
	page.NextPage, page.HasNext = NextPage(data)
	return page, nil
}

// ChannelEPG returns the schedule of a channel from the EPG service.
func (c *Client) ChannelEPG(ctx context.Context, guid string) ([]*Object, error) {
	data, err := c.getJSON(ctx, fmt.Sprintf("%s/channel/%s/", c.endpoints.EPG, guid), nil)
	if err != nil {
		return nil, err
	}
	return data.Obj("_embedded").Objects("viaplay:products"), nil
}

// Seasons returns the season-list blocks of a series page.
func (c *Client) Seasons(ctx context.Context, rawURL string) ([]*Object, error) {
	data, err := c.getJSON(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	var out []*Object
	for _, block := range blocks(data) {
		if block.String("type") == "season-list" {
			out = append(out, block)
		}
	}
	return out, nil
}

// SportSeries returns every product embedded in the page's blocks.
func (c *Client) SportSeries(ctx context.Context, rawURL string) ([]*Object, error) {
	data, err := c.getJSON(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return blockProducts(data), nil
}

// NextPage resolves the pagination cursor of a response. Pages delegate to
// their first list or grid block, products to the embedded product. ok is
// false when there is no further page.
func NextPage(data *Object) (href string, ok bool) {
	node := data
	switch data.String("type") {
	case "page":
		for _, block := range blocks(data) {
			typ := strings.ToLower(block.String("type"))
			if strings.Contains(typ, "list") || strings.Contains(typ, "grid") {
				node = block
				break
			}
		}
	case "product":
		node = data.Obj("_embedded").Obj("viaplay:product")
	}

	next := node.Obj("_links").Obj("next")
	if !next.Has("href") {
		return "", false
	}
	return next.String("href"), true
}

func blocks(data *Object) []*Object {
	return data.Obj("_embedded").Objects("viaplay:blocks")
}

func blockProducts(data *Object) []*Object {
	var out []*Object
	for _, block := range blocks(data) {
		out = append(out, block.Obj("_embedded").Objects("viaplay:products")...)
	}
	return out
}

// productStatus prefers a precomputed event_status over the timestamps.
func productStatus(p *Object, now time.Time) Status {
	if s := p.String("event_status"); s != "" {
		return Status(s)
	}
	return EventStatus(p, now)
}
