package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/grainagent/survey"
)

const defaultLang = "Korean"

// DefaultQuestionSystemPromptTemplate is the default system prompt template
// used by ModelQuestionGenerator. It takes the texture options and the
// reply language.
const DefaultQuestionSystemPromptTemplate = `You are a friendly grain sommelier running a short preference survey.

Guidelines:
1. If the user greeted you, greet them back warmly first.
2. Ask only for the missing information, naturally, in one or two sentences.
3. The texture options are %s.
- Never ask again for information that is already collected.
- Avoid lists or bullet points; make it feel like a real conversation.
- Reply in %s.
`

type generatorOptions struct {
	lang                 string
	systemPromptTemplate string
	modelOptions         []model.Option
}

type GeneratorOption func(*generatorOptions)

// WithLang sets the reply language.
func WithLang(lang string) GeneratorOption {
	return func(o *generatorOptions) {
		o.lang = lang
	}
}

func WithSystemPromptTemplate(tpl string) GeneratorOption {
	return func(o *generatorOptions) {
		o.systemPromptTemplate = tpl
	}
}

// WithModelOptions passes options such as temperature to every model call.
func WithModelOptions(opts ...model.Option) GeneratorOption {
	return func(o *generatorOptions) {
		o.modelOptions = append(o.modelOptions, opts...)
	}
}

type ModelQuestionGenerator struct {
	Lang                 string
	systemPromptTemplate string
	modelOptions         []model.Option
	chatModel            model.BaseChatModel
	greetings            *GreetingDetector
}

func NewModelQuestionGenerator(chatModel model.BaseChatModel, opts ...GeneratorOption) *ModelQuestionGenerator {
	options := generatorOptions{
		lang:                 defaultLang,
		systemPromptTemplate: DefaultQuestionSystemPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.lang == "" {
		options.lang = defaultLang
	}
	if options.systemPromptTemplate == "" {
		options.systemPromptTemplate = DefaultQuestionSystemPromptTemplate
	}
	return &ModelQuestionGenerator{
		Lang:                 options.lang,
		systemPromptTemplate: options.systemPromptTemplate,
		modelOptions:         options.modelOptions,
		chatModel:            chatModel,
		greetings:            NewGreetingDetector(),
	}
}

func (g *ModelQuestionGenerator) GenerateQuestion(ctx context.Context, req *Request) (*Result, error) {
	greeting := g.greetings.IsGreeting(req.LastUserInput)
	messages := g.buildPrompt(req, greeting)

	response, err := g.chatModel.Generate(ctx, messages, g.modelOptions...)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return nil, fmt.Errorf("LLM returned an empty question")
	}
	return &Result{
		Message:  response.Content,
		Prompt:   messages[0].Content + "\n\n" + messages[1].Content,
		Greeting: greeting,
	}, nil
}

func (g *ModelQuestionGenerator) buildPrompt(req *Request, greeting bool) []*schema.Message {
	fields := req.MissingFields
	if fields == nil {
		fields = survey.MissingFields(req.State)
	}
	systemPrompt := g.systemPromptTemplate
	if strings.Count(systemPrompt, "%s") == 2 {
		systemPrompt = fmt.Sprintf(systemPrompt, formatTextureOptions(), g.Lang)
	}
	sections := []string{
		formatStateSection(req.State),
		formatMissingSection(fields),
	}
	if s := formatUserInputSection(req.LastUserInput, greeting); s != "" {
		sections = append(sections, s)
	}
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}
}
