package main

import (
	"fmt"
	"io"
	"sort"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/geometry"
	"github.com/postcode-finder/internal/infrastructure/geojson"
)

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().BoolP("json", "j", false, "print the report as JSON")
}

type normalizeResult struct {
	File       string                      `json:"file"`
	Bytes      int64                       `json:"bytes"`
	Report     geometry.NormalizeReport    `json:"report"`
	Categories map[domain.VisaCategory]int `json:"categories"`
	Postcodes  int                         `json:"postcodes"`
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <GeoJSON file>",
	Short: "Normalize a boundary file and report what would be drawn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonfmt, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		in, size, err := openWithProgress(args[0], !jsonfmt)
		if err != nil {
			return err
		}

		result, err := runNormalize(in, newLogger(cmd))
		if cerr := in.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		result.File = args[0]
		result.Bytes = size

		if jsonfmt {
			return renderJSON(result)
		}
		renderNormalizeTxt(result)
		return nil
	},
}

func runNormalize(in io.Reader, log *zap.Logger) (*normalizeResult, error) {
	fc, err := geojson.Decode(in)
	if err != nil {
		return nil, err
	}

	shapes, report := geometry.NewNormalizer(newClassifier(), log).NormalizeWithReport(fc)

	categories := make(map[domain.VisaCategory]int)
	postcodes := make(map[string]struct{})
	for _, s := range shapes {
		categories[s.Category]++
		postcodes[s.Postcode] = struct{}{}
	}

	return &normalizeResult{
		Report:     report,
		Categories: categories,
		Postcodes:  len(postcodes),
	}, nil
}

func renderNormalizeTxt(r *normalizeResult) {
	fmt.Fprintf(out, "File: %s (%s)\n", r.File, humanize.Bytes(uint64(r.Bytes)))
	fmt.Fprintf(out, "Features: %s\n", humanize.Comma(int64(r.Report.Features)))
	fmt.Fprintf(out, "OutOfState: %s\n", humanize.Comma(int64(r.Report.OutOfState)))
	fmt.Fprintf(out, "Skipped: %s\n", humanize.Comma(int64(r.Report.Skipped)))
	fmt.Fprintf(out, "Shapes: %s\n", humanize.Comma(int64(r.Report.Shapes)))
	fmt.Fprintf(out, "Postcodes: %s\n", humanize.Comma(int64(r.Postcodes)))

	keys := make([]string, 0, len(r.Categories))
	for c := range r.Categories {
		keys = append(keys, string(c))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s: %s\n", k, humanize.Comma(int64(r.Categories[domain.VisaCategory(k)])))
	}
}
