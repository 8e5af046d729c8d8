package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestLoadDefaultPersonas(t *testing.T) {
	personas, err := LoadPersonas("")
	require.NoError(t, err)

	for _, role := range Roles {
		p, ok := personas[role]
		require.True(t, ok, "missing %s", role)
		assert.NotEmpty(t, p.Role)
		assert.NotEmpty(t, p.Goal)
		assert.NotEmpty(t, p.Backstory)
	}
	assert.Equal(t, "Student Psychiatrist", personas[RolePsychiatrist].Role)
}

func TestLoadPersonasFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	doc := `
psychiatrist:
  goal: g1
  backstory: b1
counselor:
  role: Peer Counselor
  goal: g2
  backstory: b2
wellness_coach:
  role: Coach
  goal: g3
  backstory: b3
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	personas, err := LoadPersonas(path)
	require.NoError(t, err)
	assert.Equal(t, "psychiatrist", personas[RolePsychiatrist].Role, "role name defaults to the key")
	assert.Equal(t, "Peer Counselor", personas[RoleCounselor].Role)
	assert.Equal(t, "g3", personas[RoleWellnessCoach].Goal)
}

func TestParsePersonasErrors(t *testing.T) {
	_, err := ParsePersonas([]byte("psychiatrist: {goal: x}\ncounselor: {goal: y}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wellness_coach")

	_, err = ParsePersonas([]byte("[unclosed"))
	assert.Error(t, err)

	_, err = LoadPersonas(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPersonaSystemPrompt(t *testing.T) {
	p := Persona{Role: "Wellness Coach", Goal: " Suggest habits \n", Backstory: "Coaches students."}
	assert.Equal(t, "You are Wellness Coach.\n\nGoal: Suggest habits\n\nBackstory: Coaches students.", p.SystemPrompt())
}

func TestAgentConsultTrims(t *testing.T) {
	exec := newFakeExecutor()
	exec.opinions["counselor"] = "  Write a to-do list.\n"
	agent := NewAgent(RoleCounselor, Persona{Role: "counselor"}, exec)

	opinion, err := agent.Consult(context.Background(), "ctx", "deadlines")
	require.NoError(t, err)
	assert.Equal(t, "Write a to-do list.", opinion)
}

func TestBuildTaskPrompt(t *testing.T) {
	task := Task{Description: "Provide your 1-line counselor perspective on: stress", ExpectedOutput: "1-line counselor input"}

	withContext := BuildTaskPrompt(task, "User: stress\nBot:")
	assert.Contains(t, withContext, "Task: Provide your 1-line counselor perspective on: stress")
	assert.Contains(t, withContext, "Expected output: 1-line counselor input")
	assert.Contains(t, withContext, "Conversation so far:\nUser: stress\nBot:")

	withoutContext := BuildTaskPrompt(task, "  ")
	assert.NotContains(t, withoutContext, "Conversation so far")
}

// recordingModel is a langchaingo model returning a canned completion.
type recordingModel struct {
	reply    string
	messages []llms.MessageContent
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.reply == "" {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func TestLangChainExecutor(t *testing.T) {
	model := &recordingModel{reply: "Try box breathing"}
	exec := NewLangChainExecutor(model)
	persona := Persona{Role: "Student Counselor", Goal: "help", Backstory: "trained"}
	task := Task{Description: "Provide your 1-line counselor perspective on: panic", ExpectedOutput: "1-line counselor input"}

	out, err := exec.Execute(context.Background(), persona, task, "User: panic\nBot:")
	require.NoError(t, err)
	assert.Equal(t, "Try box breathing", out)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)

	system, ok := model.messages[0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, persona.SystemPrompt(), system.Text)

	human, ok := model.messages[1].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, BuildTaskPrompt(task, "User: panic\nBot:"), human.Text)
}

func TestLangChainExecutorNoChoices(t *testing.T) {
	exec := NewLangChainExecutor(&recordingModel{})
	_, err := exec.Execute(context.Background(), Persona{}, Task{}, "")
	assert.Error(t, err)
}
