package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sagerenn/mdxlookup/internal/indexer"
)

var indexCommand = &cli.Command{
	Name:  "index",
	Usage: "build missing dictionary stores",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "drop and rebuild existing stores",
		},
	},
	Action: func(c *cli.Context) error {
		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		force := c.Bool("force") || e.cfg.Index.Reindex
		results := indexer.New(e.cfg, e.log).Run(c.Context, e.cfg.Dictionaries, force)

		failed := 0
		for _, res := range results {
			switch res.Status {
			case indexer.StatusBuilt:
				fmt.Fprintf(c.App.Writer, "%-8s %s -> %s (%d entries)\n", res.Status, res.Dict.ID, res.StorePath, res.Stats.Rows)
			case indexer.StatusFailed:
				failed++
				fmt.Fprintf(c.App.Writer, "%-8s %s: %v\n", res.Status, res.Dict.ID, res.Err)
			default:
				fmt.Fprintf(c.App.Writer, "%-8s %s\n", res.Status, res.Dict.ID)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d dictionaries", ErrIndexFailed, failed, len(results))
		}
		return nil
	},
}
