package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/geometry"
	"github.com/postcode-finder/internal/infrastructure/geojson"
	"github.com/postcode-finder/internal/search"
)

func init() {
	rootCmd.AddCommand(searchCmd)
	flags := searchCmd.Flags()
	flags.StringP("data", "d", "", "GeoJSON boundary file for shape lookups")
	flags.BoolP("json", "j", false, "print the result as JSON")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Resolve a query like the map search box",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		data, err := flags.GetString("data")
		if err != nil {
			return err
		}
		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			return err
		}

		var shapes []domain.RenderShape
		if data != "" {
			fc, err := geojson.NewFileSource(data).Fetch(cmd.Context())
			if err != nil {
				return err
			}
			shapes = geometry.NewNormalizer(newClassifier(), newLogger(cmd)).Normalize(fc)
		}

		result := runSearch(args[0], shapes)
		if jsonfmt {
			return renderJSON(result)
		}
		renderSearchTxt(result)
		return nil
	},
}

func runSearch(query string, shapes []domain.RenderShape) domain.SearchResult {
	return search.NewResolver(newClassifier()).Resolve(query, shapes, domain.VictoriaSampleLocations())
}

func renderSearchTxt(r domain.SearchResult) {
	fmt.Fprintf(out, "Kind: %s\n", r.Kind)
	if r.Postcode != "" {
		fmt.Fprintf(out, "Postcode: %s\n", r.Postcode)
	}
	if r.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", r.Name)
	}
	if r.Center != nil {
		fmt.Fprintf(out, "Center: %.4f, %.4f\n", r.Center.Latitude, r.Center.Longitude)
	}
	fmt.Fprintln(out, r.Message)
}
