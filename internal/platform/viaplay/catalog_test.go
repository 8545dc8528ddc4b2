package viaplay

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantHref string
		wantOK   bool
	}{
		{
			name:     "page uses first list block",
			data:     `{"type":"page","_embedded":{"viaplay:blocks":[{"type":"dynamic"},{"type":"list","_links":{"next":{"href":"/p2"}}},{"type":"grid","_links":{"next":{"href":"/grid2"}}}]}}`,
			wantHref: "/p2",
			wantOK:   true,
		},
		{
			name:     "page uses grid block",
			data:     `{"type":"page","_embedded":{"viaplay:blocks":[{"type":"Grid","_links":{"next":{"href":"/g2"}}}]}}`,
			wantHref: "/g2",
			wantOK:   true,
		},
		{
			name: "page without next",
			data: `{"type":"page","_links":{"next":{"href":"/ignored"}},"_embedded":{"viaplay:blocks":[{"type":"list","_links":{}}]}}`,
		},
		{
			name:     "product uses embedded product",
			data:     `{"type":"product","_links":{},"_embedded":{"viaplay:product":{"_links":{"next":{"href":"/ep2"}}}}}`,
			wantHref: "/ep2",
			wantOK:   true,
		},
		{
			name: "product without next",
			data: `{"type":"product","_links":{"next":{"href":"/ignored"}},"_embedded":{"viaplay:product":{"_links":{}}}}`,
		},
		{
			name:     "other types use the top level",
			data:     `{"type":"tvChannel","_links":{"next":{"href":"/tv2"}}}`,
			wantHref: "/tv2",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			href, ok := NextPage(mustObject(t, tt.data))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHref, href)
		})
	}
}

func TestProductsTVChannelDropsNoBroadcast(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/content/channel/tv3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{
			"type":"tvChannel",
			"_links":{"next":{"href":"https://content/tv3?page=2"}},
			"_embedded":{"viaplay:products":[
				{"system":{"guid":"a","flags":["nobroadcast"]}},
				{"system":{"guid":"b","flags":[]}}
			]}
		}`)
	})

	env := newTestEnv(t, mux, nil)
	page, err := env.client.Products(context.Background(), env.server.URL+"/content/channel/tv3", ProductQuery{})
	require.NoError(t, err)

	require.Len(t, page.Products, 1)
	assert.Equal(t, "b", page.Products[0].Obj("system").String("guid"))
	assert.True(t, page.HasNext)
	assert.Equal(t, "https://content/tv3?page=2", page.NextPage)
}

func TestProductsShapes(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("/content/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"type":"vod-list","_embedded":{"viaplay:products":[{"type":"movie"},{"type":"movie"}]}}`)
	})
	mux.HandleFunc("/content/product", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"type":"product","_embedded":{"viaplay:product":{"type":"episode","_links":{"next":{"href":"/n"}}}}}`)
	})
	mux.HandleFunc("/content/sport", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "derby", r.URL.Query().Get("query"))
		writeJSON(w, `{"type":"page","_embedded":{"viaplay:blocks":[
			{"type":"list","_embedded":{"viaplay:products":[
				{"system":{"guid":"live","flags":[]},"epg":{"start":"2024-05-01T11:00:00Z","end":"2024-05-01T13:00:00Z"}},
				{"system":{"guid":"next","flags":[]},"epg":{"start":"2024-05-02T11:00:00Z","end":"2024-05-02T13:00:00Z"}}
			]}},
			{"type":"promo","_embedded":{}},
			{"type":"list","_embedded":{"viaplay:products":[
				{"system":{"guid":"old"},"event_status":"archive"}
			]}}
		]}}`)
	})

	env := newTestEnv(t, mux, nil, fixedClock(now))
	ctx := context.Background()

	page, err := env.client.Products(ctx, env.server.URL+"/content/list", ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.False(t, page.HasNext)

	page, err = env.client.Products(ctx, env.server.URL+"/content/product", ProductQuery{})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "episode", page.Products[0].String("type"))
	assert.Equal(t, "/n", page.NextPage)

	page, err = env.client.Products(ctx, env.server.URL+"/content/sport", ProductQuery{Search: "derby"})
	require.NoError(t, err)
	assert.Len(t, page.Products, 3)

	page, err = env.client.Products(ctx, env.server.URL+"/content/sport", ProductQuery{
		Search:      "derby",
		FilterEvent: []Status{StatusLive, StatusArchive},
	})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "live", page.Products[0].Obj("system").String("guid"))
	assert.Equal(t, "old", page.Products[1].Obj("system").String("guid"))
}

func TestRootPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{
			"user":{"id":"u"},
			"_links":{
				"self":{"href":"/root"},
				"viaplay:byGuid":{"title":"byGuid","href":"/g"},
				"viaplay:search":{"title":"Sök","href":"/sok{?query}"},
				"viaplay:sections":[
					{"name":"series","title":"Serier","href":"/serier"},
					{"href":"/untitled"},
					{"name":"film","title":"Film","href":"/film"}
				]
			}
		}`)
	})

	env := newTestEnv(t, mux, nil)
	pages, err := env.client.RootPage(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, Page{Name: "viaplay:search", Title: "Sök", Href: "/sok{?query}", Link: pages[0].Link}, pages[0])
	assert.Equal(t, "viaplay:search", pages[0].Link.String("name"))
	assert.Equal(t, "series", pages[1].Name)
	assert.Equal(t, "film", pages[2].Name)
}

func TestRootPageWithoutUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"_links":{}}`)
	})

	env := newTestEnv(t, mux, nil)
	_, err := env.client.RootPage(context.Background())
	assert.ErrorIs(t, err, ErrMissingSessionCookie)
	assert.True(t, IsServiceError(err))
}

func TestChannelsCollectionsSeasonsAndSport(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/content/kanaler", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"type":"page","_embedded":{"viaplay:blocks":[
			{"type":"list","_embedded":{"viaplay:blocks":[
				{"viaplay:channel":{"system":{"channelGuid":"ch-1"},"content":{"title":"TV3","channelNumber":3,"images":{"fallback":{"template":"https://img/tv3.png{?width,height}"}}},
				 "_embedded":{"viaplay:products":[{"system":{"guid":"p1"}}]}}},
				{"viaplay:channel":{"system":{"channelGuid":"ch-2"},"content":{"title":"TV6"}}}
			]}}
		]}}`)
	})
	mux.HandleFunc("/content/series", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"type":"page","_embedded":{"viaplay:blocks":[
			{"type":"season-list","title":"S1"},
			{"type":"starred-list","title":"Starred"},
			{"type":"season-list","title":"S2","_embedded":{"viaplay:products":[{"type":"episode"}]}}
		]}}`)
	})

	env := newTestEnv(t, mux, nil)
	ctx := context.Background()

	chPage, err := env.client.Channels(ctx, env.server.URL+"/content/kanaler")
	require.NoError(t, err)
	require.Len(t, chPage.Channels, 2)
	assert.False(t, chPage.HasNext)

	tv3 := chPage.Channels[0]
	assert.Equal(t, "ch-1", tv3.GUID)
	assert.Equal(t, "TV3", tv3.Title)
	require.NotNil(t, tv3.ChannelNumber)
	assert.Equal(t, 3, *tv3.ChannelNumber)
	assert.Equal(t, "https://img/tv3.png", tv3.Logo())
	assert.Len(t, tv3.Events, 1)
	assert.Nil(t, chPage.Channels[1].ChannelNumber)

	seasons, err := env.client.Seasons(ctx, env.server.URL+"/content/series")
	require.NoError(t, err)
	assert.Len(t, seasons, 2)

	collections, err := env.client.Collections(ctx, env.server.URL+"/content/series")
	require.NoError(t, err)
	assert.Len(t, collections, 3)

	sport, err := env.client.SportSeries(ctx, env.server.URL+"/content/series")
	require.NoError(t, err)
	assert.Len(t, sport, 1)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := mustObject(t, `{"type":"episode","system":{"guid":"g1","flags":["isLive"]},"content":{"series":{"title":"Bron"}},"_links":{"viaplay:page":{"href":"/bron"}}}`)

	s := Summarize(p, now)
	assert.Equal(t, ProductSummary{GUID: "g1", Type: "episode", Title: "Bron", Status: StatusLive, Href: "/bron"}, s)
}

func TestNewEPGEvent(t *testing.T) {
	ev := NewEPGEvent(mustObject(t, `{"system":{"guid":"e1"},"epg":{"startTime":"s","endTime":"e"},"content":{"title":"News","synopsis":"Daily","images":{"landscape":{"template":"https://img/n.jpg{?w}"}}}}`))
	assert.Equal(t, EPGEvent{GUID: "e1", Start: "s", Stop: "e", Title: "News", Description: "Daily", Image: "https://img/n.jpg"}, ev)
}
