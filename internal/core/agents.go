package core

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Role string

const (
	RolePsychiatrist  Role = "psychiatrist"
	RoleCounselor     Role = "counselor"
	RoleWellnessCoach Role = "wellness_coach"
)

// Roles lists every role in the order their opinions appear in a reply.
var Roles = []Role{RolePsychiatrist, RoleCounselor, RoleWellnessCoach}

// Persona configures how the execution engine plays a role.
type Persona struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// SystemPrompt renders the persona as a system instruction.
func (p Persona) SystemPrompt() string {
	return fmt.Sprintf("You are %s.\n\nGoal: %s\n\nBackstory: %s",
		p.Role, strings.TrimSpace(p.Goal), strings.TrimSpace(p.Backstory))
}

type Task struct {
	Description    string
	ExpectedOutput string
}

// Executor runs a task for a persona on an LLM and returns the completion.
type Executor interface {
	Execute(ctx context.Context, persona Persona, task Task, conversation string) (string, error)
}

//go:embed personas.yaml
var defaultPersonas []byte

// LoadPersonas reads personas from path, or the built-in set when path is
// empty.
func LoadPersonas(path string) (map[Role]Persona, error) {
	data := defaultPersonas
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read personas file %s: %w", path, err)
		}
	}
	return ParsePersonas(data)
}

// ParsePersonas decodes a YAML document keyed by role name. All roles must
// be present.
func ParsePersonas(data []byte) (map[Role]Persona, error) {
	var raw map[string]Persona
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}

	personas := make(map[Role]Persona, len(Roles))
	for _, role := range Roles {
		p, ok := raw[string(role)]
		if !ok {
			return nil, fmt.Errorf("persona for role %q is missing", role)
		}
		if p.Role == "" {
			p.Role = string(role)
		}
		personas[role] = p
	}
	return personas, nil
}

type Agent struct {
	role     Role
	persona  Persona
	executor Executor
}

func NewAgent(role Role, persona Persona, executor Executor) *Agent {
	return &Agent{role: role, persona: persona, executor: executor}
}

// NewAgents builds one agent per role, all sharing executor.
func NewAgents(personas map[Role]Persona, executor Executor) ([]*Agent, error) {
	agents := make([]*Agent, 0, len(Roles))
	for _, role := range Roles {
		p, ok := personas[role]
		if !ok {
			return nil, fmt.Errorf("persona for role %q is missing", role)
		}
		agents = append(agents, NewAgent(role, p, executor))
	}
	return agents, nil
}

func (a *Agent) Role() Role {
	return a.role
}

// Consult asks the agent for its one-line opinion on issue.
func (a *Agent) Consult(ctx context.Context, conversation, issue string) (string, error) {
	task := Task{
		Description:    fmt.Sprintf("Provide your 1-line %s perspective on: %s", a.role, issue),
		ExpectedOutput: fmt.Sprintf("1-line %s input", a.role),
	}

	opinion, err := a.executor.Execute(ctx, a.persona, task, conversation)
	if err != nil {
		return "", err
	}
	opinion = strings.TrimSpace(opinion)
	if opinion == "" {
		return "", fmt.Errorf("%s returned an empty opinion", a.role)
	}
	return opinion, nil
}

// BuildTaskPrompt renders a task and its conversation context as the user
// turn sent to the model.
func BuildTaskPrompt(task Task, conversation string) string {
	var b strings.Builder
	b.WriteString("Task: ")
	b.WriteString(task.Description)
	b.WriteString("\nExpected output: ")
	b.WriteString(task.ExpectedOutput)
	b.WriteString("\nReply with a single sentence.")
	if strings.TrimSpace(conversation) != "" {
		b.WriteString("\n\nConversation so far:\n")
		b.WriteString(conversation)
	}
	return b.String()
}
