package browse

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/PiotrWarzachowski/go-viaplay-cli/actions"
	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
)

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "Page URL, as listed by a previous browse command",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print as JSON",
	}
}

func allFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "all",
		Aliases: []string{"a"},
		Usage:   "Follow next pages",
	}
}

// BrowseCommand walks the catalog
var BrowseCommand = &cli.Command{
	Name:  "browse",
	Usage: "Browse the Viaplay catalog",
	Commands: []*cli.Command{
		{
			Name:   "root",
			Usage:  "List the top level sections",
			Flags:  []cli.Flag{jsonFlag()},
			Action: rootAction,
		},
		{
			Name:   "collections",
			Usage:  "List the collections of a page",
			Flags:  []cli.Flag{urlFlag(), jsonFlag()},
			Action: blocksAction(func(ctx context.Context, c *viaplay.Client, url string) ([]*viaplay.Object, error) { return c.Collections(ctx, url) }),
		},
		{
			Name:  "products",
			Usage: "List the products of a page",
			Flags: []cli.Flag{
				urlFlag(), jsonFlag(), allFlag(),
				&cli.StringFlag{
					Name:    "search",
					Aliases: []string{"s"},
					Usage:   "Search query",
				},
				&cli.StringSliceFlag{
					Name:  "filter-event",
					Usage: "Only keep events with this status (live, upcoming, archive)",
				},
			},
			Action: productsAction,
		},
		{
			Name:   "channels",
			Usage:  "List live channels",
			Flags:  []cli.Flag{urlFlag(), jsonFlag(), allFlag()},
			Action: channelsAction,
		},
		{
			Name:   "seasons",
			Usage:  "List the seasons of a series",
			Flags:  []cli.Flag{urlFlag(), jsonFlag()},
			Action: blocksAction(func(ctx context.Context, c *viaplay.Client, url string) ([]*viaplay.Object, error) { return c.Seasons(ctx, url) }),
		},
		{
			Name:   "sport",
			Usage:  "List the events of a sport series",
			Flags:  []cli.Flag{urlFlag(), jsonFlag()},
			Action: sportAction,
		},
	},
}

func rootAction(ctx context.Context, cmd *cli.Command) error {
	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	pages, err := p.Client.RootPage(ctx)
	if err != nil {
		return actions.Explain(err)
	}

	if cmd.Bool("json") {
		return actions.PrintJSON(pages)
	}
	for _, page := range pages {
		fmt.Printf("📂 %-20s %s\n", page.Title, viaplay.ParseURL(page.Href))
	}
	return nil
}

type blockLister func(ctx context.Context, c *viaplay.Client, url string) ([]*viaplay.Object, error)

func blocksAction(list blockLister) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		url := cmd.String("url")
		if url == "" {
			return fmt.Errorf("--url is required")
		}

		p, err := actions.NewProvider(cmd)
		if err != nil {
			return err
		}

		blocks, err := list(ctx, p.Client, url)
		if err != nil {
			return actions.Explain(err)
		}

		if cmd.Bool("json") {
			return actions.PrintJSON(blocks)
		}
		for _, b := range blocks {
			title := b.String("title")
			if title == "" {
				title = b.String("type")
			}
			fmt.Printf("📁 %-30s %s\n", title, viaplay.ParseURL(b.Path("_links", "self").String("href")))
		}
		return nil
	}
}

func productsAction(ctx context.Context, cmd *cli.Command) error {
	url := cmd.String("url")
	if url == "" {
		return fmt.Errorf("--url is required")
	}

	var filter []viaplay.Status
	for _, s := range cmd.StringSlice("filter-event") {
		st, ok := viaplay.ParseStatus(s)
		if !ok {
			return fmt.Errorf("unknown event status %q", s)
		}
		filter = append(filter, st)
	}

	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	page, err := p.Products(ctx, url, viaplay.ProductQuery{FilterEvent: filter, Search: cmd.String("search")}, cmd.Bool("all"))
	if err != nil {
		return actions.Explain(err)
	}

	printProducts(cmd, page.Products, page.NextPage, page.HasNext)
	return nil
}

func sportAction(ctx context.Context, cmd *cli.Command) error {
	url := cmd.String("url")
	if url == "" {
		return fmt.Errorf("--url is required")
	}

	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	products, err := p.Client.SportSeries(ctx, url)
	if err != nil {
		return actions.Explain(err)
	}

	printProducts(cmd, products, "", false)
	return nil
}

func printProducts(cmd *cli.Command, products []*viaplay.Object, next string, hasNext bool) {
	now := time.Now()
	summaries := make([]viaplay.ProductSummary, 0, len(products))
	for _, prod := range products {
		summaries = append(summaries, viaplay.Summarize(prod, now))
	}

	if cmd.Bool("json") {
		_ = actions.PrintJSON(map[string]any{"products": summaries, "next_page": next, "has_next": hasNext})
		return
	}

	if len(summaries) == 0 {
		fmt.Println("📭 Nothing here")
	}
	for _, s := range summaries {
		icon := "🎬"
		switch s.Status {
		case viaplay.StatusLive:
			icon = "🔴"
		case viaplay.StatusUpcoming:
			icon = "⏰"
		}
		fmt.Printf("%s %-40s %-10s %s\n", icon, s.Title, s.Type, s.GUID)
	}
	if hasNext {
		fmt.Printf("\n➡  Next page: %s\n", next)
	}
}

func channelsAction(ctx context.Context, cmd *cli.Command) error {
	p, err := actions.NewProvider(cmd)
	if err != nil {
		return err
	}

	page, err := p.Channels(ctx, cmd.String("url"), cmd.Bool("all"))
	if err != nil {
		return actions.Explain(err)
	}

	if cmd.Bool("json") {
		type channelJSON struct {
			GUID   string `json:"guid"`
			Title  string `json:"title"`
			Number *int   `json:"number"`
			Logo   string `json:"logo"`
		}
		out := make([]channelJSON, 0, len(page.Channels))
		for _, ch := range page.Channels {
			out = append(out, channelJSON{GUID: ch.GUID, Title: ch.Title, Number: ch.ChannelNumber, Logo: ch.Logo()})
		}
		return actions.PrintJSON(out)
	}

	for _, ch := range page.Channels {
		num := "  "
		if ch.ChannelNumber != nil {
			num = fmt.Sprintf("%2d", *ch.ChannelNumber)
		}
		fmt.Printf("📺 %s %-25s %s\n", num, ch.Title, ch.GUID)
	}
	if page.HasNext {
		fmt.Printf("\n➡  Next page: %s\n", page.NextPage)
	}
	return nil
}
