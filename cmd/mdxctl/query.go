package main

import (
	"fmt"
	"strings"

	"github.com/k3a/html2text"
	"github.com/urfave/cli/v2"

	"github.com/sagerenn/mdxlookup/internal/service"
)

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "resolve a headword against the built stores",
	ArgsUsage: "WORD",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "lang",
			Aliases: []string{"l"},
			Usage:   "query dictionaries of `LANG`",
		},
		&cli.BoolFlag{
			Name:    "plain",
			Aliases: []string{"p"},
			Usage:   "strip HTML from definitions",
		},
	},
	Action: func(c *cli.Context) error {
		word := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
		if word == "" {
			return fmt.Errorf("%w: query WORD", ErrUsage)
		}
		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		reg, err := openRegistry(e)
		if err != nil {
			return err
		}
		defer reg.Close()

		out := service.New(e.cfg, reg, e.log).Query(c.Context, word, c.String("lang"))
		if c.Bool("plain") {
			out = html2text.HTML2Text(out)
		}
		fmt.Fprintln(c.App.Writer, out)
		return nil
	},
}
