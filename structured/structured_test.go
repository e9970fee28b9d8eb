package structured

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/grainagent/testcases"
)

type pickInput struct {
	Text string
}

type pickOutput struct {
	Name  string   `json:"name" jsonschema:"required,description=Picked name"`
	Tags  []string `json:"tags,omitempty" jsonschema:"description=Optional tags"`
	Level string   `json:"level,omitempty" jsonschema:"enum=low,enum=high,description=Optional level"`
}

func buildPickPrompt(ctx context.Context, in pickInput) ([]*schema.Message, error) {
	return []*schema.Message{
		schema.SystemMessage("pick a name"),
		schema.UserMessage(in.Text),
	}, nil
}

func newPickChain(t *testing.T, m *testcases.ScriptedModel) *Chain[pickInput, pickOutput] {
	t.Helper()
	chain, err := NewChain[pickInput, pickOutput](m, buildPickPrompt, "pick_name", "Pick a name")
	require.NoError(t, err)
	return chain
}

func TestChain_Invoke(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply("pick_name", `{"name":"kim","tags":["a"],"level":"high"}`))
	chain := newPickChain(t, m)

	out, err := chain.Invoke(context.Background(), pickInput{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "kim", out.Name)
	assert.Equal(t, []string{"a"}, out.Tags)
	assert.Equal(t, "high", out.Level)

	calls := m.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Options.Tools, 1)
	assert.Equal(t, "pick_name", calls[0].Options.Tools[0].Name)
	assert.Equal(t, "pick a name", m.SystemPrompt(0))
}

func TestChain_NullOptionalFieldsAreDropped(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply("pick_name", `{"name":"lee","tags":null,"level":null}`))
	out, err := newPickChain(t, m).Invoke(context.Background(), pickInput{})
	require.NoError(t, err)
	assert.Equal(t, "lee", out.Name)
	assert.Nil(t, out.Tags)
	assert.Empty(t, out.Level)
}

func TestChain_SchemaViolation(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply("pick_name", `{"name":"park","level":"medium"}`))
	_, err := newPickChain(t, m).Invoke(context.Background(), pickInput{})
	assert.ErrorIs(t, err, ErrInvalidToolArgs)
}

func TestChain_MissingRequiredField(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply("pick_name", `{"tags":["x"]}`))
	_, err := newPickChain(t, m).Invoke(context.Background(), pickInput{})
	assert.ErrorIs(t, err, ErrInvalidToolArgs)
}

func TestChain_NoToolCall(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.TextReply("I would rather chat"))
	_, err := newPickChain(t, m).Invoke(context.Background(), pickInput{})
	assert.ErrorIs(t, err, ErrNoToolCall)
	assert.Contains(t, err.Error(), "I would rather chat")
}

func TestChain_MalformedArguments(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply("pick_name", `{"name":`))
	_, err := newPickChain(t, m).Invoke(context.Background(), pickInput{})
	assert.Error(t, err)
}

func TestChain_ModelError(t *testing.T) {
	boom := errors.New("upstream down")
	m := testcases.NewScriptedModel(testcases.ErrorReply(boom))
	_, err := newPickChain(t, m).Invoke(context.Background(), pickInput{})
	assert.ErrorIs(t, err, boom)
}

func TestNewChainWithToolInfo_DynamicEnum(t *testing.T) {
	info := &schema.ToolInfo{
		Name: "choose",
		Desc: "Choose one key",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"key": {Type: schema.String, Enum: []string{"k1", "k2"}, Required: true},
		}),
	}
	type choice struct {
		Key string `json:"key"`
	}
	m := testcases.NewScriptedModel(
		testcases.RawToolReply("choose", `{"key":"k2"}`),
		testcases.RawToolReply("choose", `{"key":"k9"}`),
	)
	chain, err := NewChainWithToolInfo[pickInput, choice](m, buildPickPrompt, info)
	require.NoError(t, err)

	out, err := chain.Invoke(context.Background(), pickInput{})
	require.NoError(t, err)
	assert.Equal(t, "k2", out.Key)

	_, err = chain.Invoke(context.Background(), pickInput{})
	assert.ErrorIs(t, err, ErrInvalidToolArgs)
}

func TestNewChainWithToolInfo_Nil(t *testing.T) {
	_, err := NewChainWithToolInfo[pickInput, pickOutput](testcases.NewScriptedModel(), buildPickPrompt, nil)
	assert.Error(t, err)
}
