package cmd

import (
	"strings"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/accounting"
	"github.com/etnz/portfoy/config"
	"github.com/etnz/portfoy/sheet"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// profiles predicts the profile names of the configured workbook.
type profiles struct{}

func (profiles) Predict(prefix string) []string {
	names := []string{portfoy.TotalProfile}
	cfg, err := config.Load(*ConfigFile)
	if err != nil {
		return names
	}
	book, err := sheet.Open(cfg.Workbook)
	if err != nil {
		return names
	}
	stored, err := book.Profiles()
	if err != nil {
		return names
	}
	var matches []string
	for _, n := range append(stored, names...) {
		if strings.HasPrefix(n, prefix) {
			matches = append(matches, n)
		}
	}
	return matches
}

// Completion returns the shell completion of pfy.
func Completion() *complete.Command {
	dims := predict.Set(accounting.Dimensions)
	periods := predict.Set{"week", "month", "quarter", "year"}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Something,
			"v":      predict.Nothing,
			"plain":  predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"value":    {Flags: map[string]complete.Predictor{"p": profiles{}, "json": predict.Nothing}},
			"groups":   {Flags: map[string]complete.Predictor{"p": profiles{}, "by": dims, "all": predict.Nothing, "json": predict.Nothing}},
			"history":  {Flags: map[string]complete.Predictor{"p": profiles{}, "period": periods, "in": periods, "json": predict.Nothing}},
			"snapshot": {Flags: map[string]complete.Predictor{"p": profiles{}}},
			"chart":    {Flags: map[string]complete.Predictor{"p": profiles{}, "by": dims, "history": predict.Nothing, "o": predict.Something}},
			"assist":   {},
			"serve":    {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"config":   {},
		},
	}
}
