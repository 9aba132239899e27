package agent

import (
	"context"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"
	"google.golang.org/genai"

	"github.com/etnz/wager"
	"github.com/etnz/wager/docs"
	"github.com/etnz/wager/renderer"
)

const model = "gemini-2.5-pro"

// Source provides the current dashboard.
type Source interface {
	Dashboard(ctx context.Context) (wager.Dashboard, error)
}

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You host the conversation about a friendly wager: who of Bitcoin or the Ibovespa
			makes the most out of R$100.000 invested on 2024-06-24.

			The experts from the Tools are at your service and keep the context of your previous questions.
			Devise a plan of questions to ask them and come up with the best response to the user's request.

			Never invent figures: ask the Referee for any number about the wager.
			Answer in the language of the user, in markdown.
			`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst returns an expert grounded on Google Search for market news.
func NewAnalyst() *Expert {
	return &Expert{
		Name: "Analyst",
		Description: `This is a market analyst, aware of the latest news about crypto currencies,
		the Brazilian stock market, interest rates and inflation.
		Ask the Analyst whenever you need recent or grounding information to explain a move.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a market analyst following Bitcoin, the Ibovespa, the CDI, the IPCA,
			the IFIX and the Brazilian real. Leverage Google Search to ground your assertions
			and relate the latest news to the question.
			`}}},
		},
	}
}

// NewReferee returns the expert reading the dashboard of src.
func NewReferee(src Source, opts renderer.Options) *Expert {
	lib := []Function{DashboardFunc(src, opts), SeriesFunc(src, opts), DocumentationFunc()}
	return &Expert{
		Name: "Referee",
		Description: `This is the Referee of the wager. He knows the current scoreboard, the value of
		both contenders and every benchmark over time, their period returns and monthly consistency.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the impartial referee of the Bitcoin versus Ibovespa wager.
			Use the Tools to read the dashboard and the value series of the instruments,
			and the documentation to explain how values and statistics are computed.
			Quote the figures as given by the Tools.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// DashboardFunc returns the tool rendering the whole dashboard.
func DashboardFunc(src Source, opts renderer.Options) *Func {
	const name = "Dashboard"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Dashboard returns the scoreboard of the wager, the period returns, the monthly consistency and the monthly values of every instrument.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The dashboard as a markdown document.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			d, err := src.Dashboard(ctx)
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, renderer.Dashboard(d, opts))
		},
	}
}

// SeriesFunc returns the tool listing the month end values of one instrument.
func SeriesFunc(src Source, opts renderer.Options) *Func {
	const name = "Series"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Series lists the value of the investment in one instrument at the end of every month, and its latest value.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"instrument": {
						Type:        genai.TypeString,
						Description: "The instrument id: bitcoin, ibovespa, cdi, poupanca, ifix, ipca, ipcaPlus5 or dolarPlus4.",
					},
					"from": {
						Type:        genai.TypeString,
						Description: "Only list months from this date. The whole wager by default.\n\n" + must(docs.GetTopic("dates")),
					},
				},
				Required: []string{"instrument"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of dates and values.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			instrument, ok := args["instrument"].(string)
			if !ok {
				return failure(id, name, fmt.Errorf("argument 'instrument' is not a string as expected but %T", args["instrument"]))
			}
			from, err := parseDate(args)
			if err != nil {
				return failure(id, name, err)
			}
			d, err := src.Dashboard(ctx)
			if err != nil {
				return failure(id, name, err)
			}
			res, ok := d.Instrument(instrument)
			if !ok {
				return failure(id, name, fmt.Errorf("%w: %q", wager.ErrUnknownInstrument, instrument))
			}
			return success(id, name, seriesMarkdown(res, from, opts))
		},
	}
}

// DocumentationFunc returns the tool reading the user documentation.
func DocumentationFunc() *Func {
	const name = "Documentation"
	topics, _ := docs.GetAllTopics()
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Documentation returns a topic of the user documentation.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {
						Type:        genai.TypeString,
						Description: "The topic, one of " + strings.Join(topics, ", ") + ".",
					},
				},
				Required: []string{"topic"},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "The topic in markdown."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			topic, _ := args["topic"].(string)
			content, err := docs.GetTopic(topic)
			if err != nil {
				return failure(id, name, err)
			}
			return success(id, name, content)
		},
	}
}

func seriesMarkdown(res wager.InstrumentResult, from wager.Date, opts renderer.Options) string {
	currency := opts.Currency
	if currency == "" {
		currency = "BRL"
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Date", res.Name},
		Rows:      [][]string{},
	}
	for _, month := range res.Data.Months() {
		if month.Last.Date.Before(from) {
			continue
		}
		table.Rows = append(table.Rows, []string{month.Last.Date.String(), wager.M(month.Last.Value, currency).String()})
	}
	var b strings.Builder
	doc := md.NewMarkdown(&b)
	doc.Table(table)
	doc.PlainTextf("Return since the start: %s", res.ReturnPercent.SignedString())
	return doc.String()
}

func parseDate(args map[string]any) (wager.Date, error) {
	v, ok := args["from"]
	if !ok {
		return wager.Date{}, nil
	}
	s, ok := v.(string)
	if !ok {
		return wager.Date{}, fmt.Errorf("argument 'from' is not a string as expected but %T", v)
	}
	on, err := wager.ParseDate(s)
	if err != nil {
		return wager.Date{}, fmt.Errorf("argument 'from' must be a valid date got %q. Below is the doc about the format date\n\n%s", s, must(docs.GetTopic("dates")))
	}
	return on, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
