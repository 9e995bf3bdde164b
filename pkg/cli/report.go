package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uicheck/pkg/report"
)

var reportCommand = &cli.Command{
	Name:      "report",
	Usage:     "Render report.html (and optionally Allure results) from a report directory",
	ArgsUsage: "<report-dir>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "title",
			Usage: "HTML report title",
		},
		&cli.BoolFlag{
			Name:  "allure",
			Usage: "Also write allure-results/",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("exactly one report directory is required")
		}
		dir := c.Args().First()

		if err := report.GenerateHTML(dir, report.HTMLConfig{Title: c.String("title")}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s %s/report.html\n", green("✓"), dir)

		if c.Bool("allure") {
			if err := report.GenerateAllure(dir); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s %s/allure-results\n", green("✓"), dir)
		}
		return nil
	},
}
