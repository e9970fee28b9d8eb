// Package cooking matches a free-text cooking request against a list of
// rice-cooker recipes.
package cooking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/grainagent/structured"
	"github.com/tbxark/grainagent/types"
)

var (
	ErrNoCandidates    = errors.New("no recipe candidates")
	ErrRecipeNotInList = errors.New("selected recipe is not in the candidate list")
)

const (
	selectToolName        = "select_recipe"
	selectToolDescription = "Select exactly one recipe from the candidate list and explain the choice to the customer."
)

const systemPromptTemplate = `You are the AI assistant of a smart rice cooker.
Analyze the user's request and choose the single best menu from the recipe list below, then call %s.

# User request:
"%s"

# Recipe list:
%s

# Rules:
1. Choose only from the menus in the list.
2. Read the user's health, mood and tone, and match the most similar menu (e.g. "hearty" -> nutritious or sticky rice, "soft" -> porridge or slow cook).
3. If nothing fits, choose the basic '백미' (white rice) menu.
4. Write the reason as a polite spoken reply in %s, e.g. "네, 고객님. 건강을 위해 ~를 준비해드릴게요."`

// RecipeSource supplies candidates when a request carries none.
type RecipeSource interface {
	ListRecipes(ctx context.Context) ([]types.Recipe, error)
}

type selection struct {
	RecipeKey string `json:"recipeKey"`
	Reason    string `json:"reason"`
}

type Analyzer struct {
	Lang      string
	chatModel model.ToolCallingChatModel
	source    RecipeSource
	opts      []model.Option
}

// NewAnalyzer creates an analyzer. source may be nil.
func NewAnalyzer(chatModel model.ToolCallingChatModel, source RecipeSource, lang string, opts ...model.Option) *Analyzer {
	if lang == "" {
		lang = "Korean"
	}
	return &Analyzer{Lang: lang, chatModel: chatModel, source: source, opts: opts}
}

func (a *Analyzer) Analyze(ctx context.Context, req *types.CookingRequest) (*types.SelectedMenu, error) {
	candidates, err := a.candidates(ctx, req)
	if err != nil {
		return nil, err
	}
	chain, err := structured.NewChainWithToolInfo[*types.CookingRequest, selection](
		a.chatModel,
		func(ctx context.Context, req *types.CookingRequest) ([]*schema.Message, error) {
			return a.buildPrompt(req.Text, candidates), nil
		},
		toolInfo(candidates),
		a.opts...,
	)
	if err != nil {
		return nil, err
	}
	choice, err := chain.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, r := range candidates {
		if r.RecipeKey == choice.RecipeKey {
			slog.Debug("Recipe selected", "recipeKey", r.RecipeKey, "recipeNm", r.RecipeNm)
			return &types.SelectedMenu{Recipe: r, Reason: choice.Reason}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRecipeNotInList, choice.RecipeKey)
}

func (a *Analyzer) candidates(ctx context.Context, req *types.CookingRequest) ([]types.Recipe, error) {
	list := req.RecipeList
	if len(list) == 0 && a.source != nil {
		stored, err := a.source.ListRecipes(ctx)
		if err != nil {
			return nil, fmt.Errorf("load recipes: %w", err)
		}
		list = stored
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]types.Recipe, 0, len(list))
	for _, r := range list {
		if r.RecipeKey == "" {
			continue
		}
		if _, ok := seen[r.RecipeKey]; ok {
			continue
		}
		seen[r.RecipeKey] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	return out, nil
}

func (a *Analyzer) buildPrompt(text string, candidates []types.Recipe) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(systemPromptTemplate, selectToolName, strings.TrimSpace(text), FormatRecipes(candidates), a.Lang)),
	}
}

// FormatRecipes renders the candidate list as a markdown table.
func FormatRecipes(recipes []types.Recipe) string {
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{r.RecipeNm, r.RecipeKey, r.RecipeNo})
	}
	return types.MarkdownTable([]string{"Menu", "Key", "No"}, rows)
}

func toolInfo(candidates []types.Recipe) *schema.ToolInfo {
	keys := make([]string, len(candidates))
	for i, r := range candidates {
		keys[i] = r.RecipeKey
	}
	return &schema.ToolInfo{
		Name: selectToolName,
		Desc: selectToolDescription,
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"recipeKey": {Type: schema.String, Enum: keys, Required: true, Desc: "Key of the chosen recipe"},
			"reason":    {Type: schema.String, Required: true, Desc: "Why this menu was chosen, as said to the customer"},
		}),
	}
}
