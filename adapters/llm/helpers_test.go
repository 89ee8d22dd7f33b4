package llm

import (
	"context"
	"errors"
	"sync"

	"google.golang.org/genai"
)

type fakeReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// fakeGenerator replays scripted replies in order and records every call.
type fakeGenerator struct {
	mu       sync.Mutex
	replies  []fakeReply
	configs  []*genai.GenerateContentConfig
	contents [][]*genai.Content
	models   []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.configs)
	f.configs = append(f.configs, config)
	f.contents = append(f.contents, contents)
	f.models = append(f.models, model)
	if idx >= len(f.replies) {
		return nil, errors.New("unexpected call")
	}
	return f.replies[idx].resp, f.replies[idx].err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.configs)
}

// blockingGenerator waits for the context to end.
type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func textReply(text string, finish genai.FinishReason) fakeReply {
	return fakeReply{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(text)}, genai.RoleModel),
			FinishReason: finish,
		}},
	}}
}

func emptyReply() fakeReply {
	return fakeReply{resp: &genai.GenerateContentResponse{}}
}
