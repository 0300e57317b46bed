package agent

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Portfolio gives read access to the user's profiles, rendered as markdown.
type Portfolio interface {
	Profiles(ctx context.Context) ([]string, error)
	Report(ctx context.Context, profile string) (string, error)
	Groups(ctx context.Context, profile, dimension string) (string, error)
	History(ctx context.Context, profile string) (string, error)
}

func instruction(s string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: s}}}
}

// creates the facilitator
func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.

			The user is a Turkish individual investor holding BIST equities, US equities, TEFAS funds,
			gold and silver, foreign cash and futures, spread over several profiles. TOTAL is the union
			of all profiles. Answer in the user's language.

			Devise a plan of questions to ask to each expert and come up with the best response.
			The user will assume that you know about his holdings, ask the Analyst first.
		`),
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded on Google Search.
func NewTrader(model string) *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, well aware of Borsa Istanbul, US markets, TEFAS funds
		and commodities, and of the latest news about companies and funds.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are an expert in trading, you can search and find about anything related to
			companies, markets, funds and exchange rates. You leverage Google Search to
			ground your assertions.
			`),
		},
	}
}

// NewAnalyst returns the expert reading the user's profiles.
func NewAnalyst(model string, p Portfolio) *Expert {
	lib := Functions(p)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It reads the user's profiles: holdings valued at current prices,
		profit and loss, allocation by market, sector or asset class, and the value history.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are the analyst of the user's portfolio. Use the Tools to read it.
			Values are in Turkish lira unless stated otherwise. A holding whose source is "fallback"
			had no market price and is valued at its cost: say so when it matters.
			`),
		},
		Library: NewLibrary(lib),
	}
}

// Functions returns the tools reading p.
func Functions(p Portfolio) []*Func {
	profileParam := &genai.Schema{
		Type:        genai.TypeString,
		Description: "The profile name, TOTAL for all profiles together.",
	}
	markdown := &genai.Schema{Type: genai.TypeString, Description: "A markdown report."}

	return []*Func{
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "Profiles",
				Description: "Profiles lists the names of the user's profiles.",
				Response:    &genai.Schema{Type: genai.TypeString, Description: "Profile names, one per line."},
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				names, err := p.Profiles(ctx)
				if err != nil {
					return failure(id, "Profiles", err)
				}
				return success(id, "Profiles", strings.Join(names, "\n"))
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "Report",
				Description: "Report values every holding of a profile at current prices, with totals.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"profile": profileParam},
					Required:   []string{"profile"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				profile, err := stringArg(args, "profile")
				if err != nil {
					return failure(id, "Report", err)
				}
				md, err := p.Report(ctx, profile)
				if err != nil {
					return failure(id, "Report", err)
				}
				return success(id, "Report", md)
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "Groups",
				Description: "Groups subtotals the value of a profile by market, sector, code or class.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"profile": profileParam,
						"dimension": {
							Type:        genai.TypeString,
							Enum:        []string{"market", "sector", "code", "class"},
							Description: "The grouping dimension.",
						},
					},
					Required: []string{"profile", "dimension"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				profile, err := stringArg(args, "profile")
				if err != nil {
					return failure(id, "Groups", err)
				}
				dim, err := stringArg(args, "dimension")
				if err != nil {
					return failure(id, "Groups", err)
				}
				md, err := p.Groups(ctx, profile, dim)
				if err != nil {
					return failure(id, "Groups", err)
				}
				return success(id, "Groups", md)
			},
		},
		{
			Decl: &genai.FunctionDeclaration{
				Name:        "History",
				Description: "History lists the recorded daily totals of a profile in TRY and USD.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"profile": profileParam},
					Required:   []string{"profile"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				profile, err := stringArg(args, "profile")
				if err != nil {
					return failure(id, "History", err)
				}
				md, err := p.History(ctx, profile)
				if err != nil {
					return failure(id, "History", err)
				}
				return success(id, "History", md)
			},
		},
	}
}
