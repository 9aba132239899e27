package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/wager"
	"github.com/etnz/wager/docs"
)

// completion returns the completion tree of bet.
func completion() *complete.Command {
	var instruments []string
	for _, in := range wager.DefaultConfig().Instruments {
		instruments = append(instruments, in.ID)
	}
	topics, _ := docs.GetAllTopics()
	formats := predict.Set{"markdown", "json"}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":        predict.Files("*.yaml"),
			"cache-dir":     predict.Dirs("*"),
			"eodhd-api-key": predict.Nothing,
			"v":             predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"dashboard": {
				Flags: map[string]complete.Predictor{
					"format":  formats,
					"section": predict.Set{"all", "scoreboard", "returns", "consistency", "timeline"},
				},
			},
			"series": {
				Flags: map[string]complete.Predictor{
					"raw":    predict.Nothing,
					"from":   predict.Set{"-1m", "-3m", "-6m", "-1y"},
					"format": formats,
				},
				Args: predict.Set(instruments),
			},
			"serve": {
				Flags: map[string]complete.Predictor{
					"addr":      predict.Set{":8080"},
					"redis":     predict.Set{"localhost:6379"},
					"json-logs": predict.Nothing,
				},
			},
			"assist": {},
			"topic":  {Args: predict.Set(append(topics, "*"))},
			"help":   {},
		},
	}
}

// Complete answers shell completion requests, exiting when it did.
// Install with COMP_INSTALL=1 bet.
func Complete(name string) { completion().Complete(name) }
