package main

import (
	"strconv"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "list configured dictionaries and their stores",
	Action: func(c *cli.Context) error {
		e, err := loadEnv(c)
		if err != nil {
			return err
		}
		reg, err := openRegistry(e)
		if err != nil {
			return err
		}
		defer reg.Close()

		tbl := table.New("ID", "Name", "Language", "Enabled", "Available", "Entries").WithWriter(c.App.Writer)
		for _, d := range reg.List() {
			entries := "-"
			if d.Available() {
				if n, err := d.Store.Count(c.Context); err == nil {
					entries = strconv.FormatInt(n, 10)
				}
			}
			tbl.AddRow(d.ID(), d.Name(), d.Language, d.Config.IsEnabled(), d.Available(), entries)
		}
		tbl.Print()
		return nil
	},
}
