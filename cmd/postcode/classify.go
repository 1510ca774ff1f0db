package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolP("json", "j", false, "print results as JSON")
}

type classification struct {
	Postcode      string                  `json:"postcode"`
	Eligibility   domain.EligibilityFlags `json:"eligibility"`
	Category      domain.VisaCategory     `json:"category"`
	EligibleVisas []string                `json:"eligible_visas"`
	Message       string                  `json:"message"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify <postcode>...",
	Short: "Show visa eligibility of postcodes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonfmt, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		results := runClassify(newClassifier(), args)
		if jsonfmt {
			return renderJSON(results)
		}
		renderClassifyTxt(results)
		return nil
	},
}

func runClassify(classifier *eligibility.Classifier, postcodes []string) []classification {
	results := make([]classification, 0, len(postcodes))
	for _, pc := range postcodes {
		flags, category := classifier.Categorize(pc)
		results = append(results, classification{
			Postcode:      pc,
			Eligibility:   flags,
			Category:      category,
			EligibleVisas: classifier.EligibleVisas(pc),
			Message:       classifier.EligibilityMessage(pc),
		})
	}
	return results
}

func renderClassifyTxt(results []classification) {
	for _, r := range results {
		visas := "none"
		if len(r.EligibleVisas) > 0 {
			visas = strings.Join(r.EligibleVisas, ", ")
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", r.Postcode, r.Category, visas)
	}
}

func renderJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(b))
	return nil
}
