package core

import (
	"context"
	"fmt"
	"sync"
)

// fakeExecutor answers with a fixed opinion per persona role.
type fakeExecutor struct {
	mu       sync.Mutex
	opinions map[string]string
	errs     map[string]error
	block    map[string]bool // wait for ctx cancellation
	calls    []fakeCall
}

type fakeCall struct {
	Persona      Persona
	Task         Task
	Conversation string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		opinions: map[string]string{
			string(RolePsychiatrist):  "It sounds like exam pressure is weighing on you",
			string(RoleCounselor):     "Break revision into 25-minute blocks with short breaks",
			string(RoleWellnessCoach): "Take a ten-minute walk outside each afternoon",
		},
		errs:  map[string]error{},
		block: map[string]bool{},
	}
}

func (f *fakeExecutor) Execute(ctx context.Context, persona Persona, task Task, conversation string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Persona: persona, Task: task, Conversation: conversation})
	err := f.errs[persona.Role]
	block := f.block[persona.Role]
	opinion, ok := f.opinions[persona.Role]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no opinion for %s", persona.Role)
	}
	return opinion, nil
}

func (f *fakeExecutor) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

func testPersonas() map[Role]Persona {
	personas := make(map[Role]Persona, len(Roles))
	for _, role := range Roles {
		personas[role] = Persona{Role: string(role), Goal: "help", Backstory: "experienced"}
	}
	return personas
}

func newTestComposer(exec Executor, opts ...ComposerOption) *Composer {
	agents, err := NewAgents(testPersonas(), exec)
	if err != nil {
		panic(err)
	}
	c, err := NewComposer(agents, opts...)
	if err != nil {
		panic(err)
	}
	return c
}
