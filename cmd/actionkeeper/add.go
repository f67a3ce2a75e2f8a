package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/actionkeeper/internal/client/cli"
	"github.com/dmitrijs2005/actionkeeper/internal/client/models"
	"github.com/spf13/cobra"
)

var (
	addPayload     string
	addTitle       string
	addDescription string
	addLocation    string
	addMetrics     []string
	addMedia       []string
	addMediaFiles  []string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new action",
	Long: `Record a new action from flags or from a JSON payload file.

  actionkeeper add --title "Planted trees" --location Recife \
      --metric trees=120 --media-file before.jpg
  actionkeeper add --payload action.json
  cat action.json | actionkeeper add --payload -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := payloadFromFlags(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withSession(cmd, true, func(ctx context.Context, app *cli.App) error {
			_, err := app.SaveAction(ctx, p)
			return err
		})
	},
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addPayload, "payload", "", `JSON payload file ("-" for stdin)`)
	f.StringVarP(&addTitle, "title", "t", "", "action title")
	f.StringVarP(&addDescription, "description", "d", "", "action description")
	f.StringVarP(&addLocation, "location", "l", "", "free-form location")
	f.StringArrayVarP(&addMetrics, "metric", "m", nil, "metric as name=value (repeatable)")
	f.StringArrayVar(&addMedia, "media", nil, "evidence descriptor as name:sha256:size (repeatable)")
	f.StringArrayVar(&addMediaFiles, "media-file", nil, "evidence file to hash (repeatable)")
	rootCmd.AddCommand(addCmd)
}

func payloadFromFlags(stdin io.Reader) (models.Payload, error) {
	var p models.Payload

	if addPayload != "" {
		data, err := readPayload(addPayload, stdin)
		if err != nil {
			return p, err
		}
		if p, err = models.ParsePayload(data); err != nil {
			return p, err
		}
	} else {
		p.Title = addTitle
		p.Description = addDescription
		if addLocation != "" {
			loc := addLocation
			p.Location = &loc
		}
		metrics, err := models.MetricsFromStrings(addMetrics)
		if err != nil {
			return p, err
		}
		p.Metrics = metrics
	}

	for _, s := range addMedia {
		m, err := models.MediaFromString(s)
		if err != nil {
			return p, fmt.Errorf("--media %q: %w", s, err)
		}
		p.Media = append(p.Media, m)
	}

	files, err := cli.MediaFromFiles(addMediaFiles)
	if err != nil {
		return p, err
	}
	p.Media = append(p.Media, files...)

	return p, p.Validate()
}

func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
