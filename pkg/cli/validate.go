package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uicheck/pkg/config"
	"github.com/devicelab-dev/uicheck/pkg/logger"
	"github.com/devicelab-dev/uicheck/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check files for errors without opening any page",
	ArgsUsage: "<check-file-or-folder>...",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Expression variables (KEY=VALUE)",
		},
		&cli.StringSliceFlag{
			Name:  "include-tags",
			Usage: "Only include check files with these tags",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-tags",
			Usage: "Exclude check files with these tags",
		},
	},
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	ws, err := loadWorkspace(c)
	if err != nil {
		return err
	}
	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths = ws.Flows
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one check file or folder is required")
	}

	if err := logger.Init(pickString(c, "log-file", ws.LogFile()), ws.Log.Rotation); err == nil {
		defer logger.Close()
	}

	env := make(map[string]string)
	for k, v := range ws.Env {
		env[k] = v
	}
	for k, v := range parseEnvVars(c.StringSlice("env")) {
		env[k] = v
	}
	opts := []validator.Option{validator.WithEnv(env)}
	if pickString(c, "driver", ws.Driver) == config.DriverHTML {
		opts = append(opts, validator.RequirePage())
	}
	v := validator.New(pick(c, "include-tags", ws.IncludeTags), pick(c, "exclude-tags", ws.ExcludeTags), opts...)

	files, checks, invalid := 0, 0, 0
	for _, path := range paths {
		result := v.Validate(path)
		for _, file := range result.Files {
			fmt.Fprintf(stdout, "  %s %s\n", green("✓"), file)
		}
		for _, err := range result.Errors {
			fmt.Fprintf(stdout, "  %s %s\n", red("✗"), err)
			logger.Error("validation: %v", err)
		}
		files += len(result.Files)
		checks += result.Checks
		invalid += len(result.Errors)
	}

	fmt.Fprintf(stdout, "\n%d valid file(s), %d check(s)", files, checks)
	if invalid > 0 {
		fmt.Fprintf(stdout, ", %s\n", red(fmt.Sprintf("%d invalid", invalid)))
		return fmt.Errorf("%d invalid check file(s)", invalid)
	}
	fmt.Fprintln(stdout)
	return nil
}
