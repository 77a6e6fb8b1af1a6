package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"vegan-agent-be/internal/credential"
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/pkg/logger"
	"vegan-agent-be/internal/repository/memory"
	"vegan-agent-be/pkg/events"
	"vegan-agent-be/pkg/ingredient"
	"vegan-agent-be/pkg/llm"
	"vegan-agent-be/pkg/verdict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeProvider struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []llm.VisionRequest
	// callTool makes the fake behave like a model that consults the lookup tool.
	callTool []string
	toolOut  map[string]any
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Analyze(ctx context.Context, req llm.VisionRequest, opts ...llm.Option) (*llm.VisionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := &llm.VisionResponse{Text: f.text, Model: "fake-1"}
	if len(f.callTool) > 0 {
		t, ok := llm.FindTool(req.Tools, ingredient.ToolName)
		if ok {
			items := make([]any, len(f.callTool))
			for i, s := range f.callTool {
				items[i] = s
			}
			f.toolOut = t.Invoke(ctx, map[string]any{"ingredients": items})
			resp.ToolCalls++
		}
	}
	if req.WebSearch {
		resp.Citations = []llm.Citation{{Title: "Maker site", URI: "https://maker.example/product"}}
	}
	return resp, nil
}

type fakeReader struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
	// block holds the read until ctx is done.
	block       bool
	hadDeadline bool
}

func (f *fakeReader) ReadText(ctx context.Context, image []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	block := f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type harness struct {
	svc       IScanService
	repo      *memory.SessionRepository
	provider  *fakeProvider
	built     int
	keysSeen  []string
	bus       *fakeEventPublisher
	toolTable *ingredient.Matcher
}

type harnessOpts struct {
	store  credential.Source
	reader *fakeReader
	tools  bool
}

func newHarness(t *testing.T, provider *fakeProvider, o harnessOpts) *harness {
	t.Helper()
	h := &harness{
		repo:      memory.NewSessionRepository(time.Hour, 3),
		provider:  provider,
		bus:       &fakeEventPublisher{},
		toolTable: ingredient.NewMatcher(ingredient.Default(), ingredient.UnknownOmit),
	}

	var sources []credential.Source
	if o.store != nil {
		sources = append(sources, o.store)
	}
	resolver := credential.NewResolver("GOOGLE_API_KEY", sources...)

	factory := func(ctx context.Context, apiKey string) (llm.VisionProvider, error) {
		h.built++
		h.keysSeen = append(h.keysSeen, apiKey)
		return provider, nil
	}

	svc := &scanService{
		resolver:       resolver,
		keys:           h.repo,
		histories:      h.repo,
		newProvider:    factory,
		matcher:        h.toolTable,
		eventPublisher: h.bus,
		logger:         logger.NewNop(),
		opts: ScanOptions{
			ProviderName:      "fake",
			Timeout:           time.Second,
			MaxUploadBytes:    1 << 20,
			MaxToolRounds:     4,
			ToolLookupEnabled: o.tools,
		},
		now: time.Now,
	}
	if o.reader != nil {
		svc.textReader = o.reader
	}
	h.svc = svc
	return h
}

func TestScanMissingCredentialHaltsBeforeRemoteCall(t *testing.T) {
	provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
	reader := &fakeReader{text: "sugar"}
	h := newHarness(t, provider, harnessOpts{reader: reader})

	resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage, Filename: "label.png"})

	assert.Equal(t, dto.ScanStatusCredentialError, resp.Status)
	assert.Contains(t, resp.Error, "GOOGLE_API_KEY")
	assert.Nil(t, resp.Verdict)
	assert.Equal(t, 0, h.built)
	assert.Empty(t, provider.requests)
	assert.Equal(t, 0, reader.calls)

	entries, err := h.repo.List(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanUsesEnteredKeyOnlyWhenStoreIsEmpty(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, &fakeProvider{text: "✅ LIKELY VEGAN"}, harnessOpts{})
	require.NoError(t, h.repo.SetAPIKey(ctx, "s1", "AIzaTyped"))
	resp := h.svc.Scan(ctx, "s1", &dto.ScanRequest{Image: pngImage})
	require.Equal(t, dto.ScanStatusOK, resp.Status)
	assert.Equal(t, []string{"AIzaTyped"}, h.keysSeen)

	h = newHarness(t, &fakeProvider{text: "✅ LIKELY VEGAN"}, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "AIzaStore"}})
	require.NoError(t, h.repo.SetAPIKey(ctx, "s1", "AIzaTyped"))
	h.svc.Scan(ctx, "s1", &dto.ScanRequest{Image: pngImage})
	assert.Equal(t, []string{"AIzaStore"}, h.keysSeen)
}

func TestScanClassifiesAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{text: "❌ NOT VEGAN: contains gelatin\n- gelatin"}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "AIzaStore"}, tools: true})

	resp := h.svc.Scan(ctx, "s1", &dto.ScanRequest{Image: pngImage, Filename: "label.PNG"})

	require.Equal(t, dto.ScanStatusOK, resp.Status)
	require.NotNil(t, resp.Verdict)
	assert.Equal(t, verdict.KindNotVegan, resp.Verdict.Kind)
	assert.Equal(t, verdict.StyleError, resp.Verdict.Style)
	assert.Equal(t, "fake/fake-1", resp.Provider)
	assert.Equal(t, dto.Disclaimer, resp.Disclaimer)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "image/png", req.Image.MIMEType)
	assert.False(t, req.WebSearch)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, ingredient.ToolName, req.Tools[0].Declaration.Name)

	entries, err := h.repo.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "❌ NOT VEGAN: contains gelatin", entries[0].Summary)
	assert.EqualValues(t, "scan", entries[0].Mode)

	require.Len(t, h.bus.events, 1)
	assert.Equal(t, events.TypeScanCompleted, h.bus.events[0].EventType())
	assert.Equal(t, "not_vegan", h.bus.events[0].Payload()["verdict"])
}

func TestScanHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{text: "⚠️ CAUTION: E471"}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "AIzaStore"}})

	for i := 0; i < 5; i++ {
		h.svc.Scan(ctx, "s1", &dto.ScanRequest{Image: pngImage})
	}
	entries, err := h.repo.List(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestScanModelCallsLookupTool(t *testing.T) {
	provider := &fakeProvider{text: "❌ NOT VEGAN", callTool: []string{"Whey Powder", "Agar Agar", "Unknown Starch"}}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}, tools: true})

	resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage})
	require.Equal(t, dto.ScanStatusOK, resp.Status)
	assert.Equal(t, 1, resp.ToolCalls)

	results, ok := provider.toolOut["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "Whey Powder", results[0].(map[string]any)["ingredient"])
	assert.Equal(t, "Milk", results[0].(map[string]any)["source"])
	assert.Equal(t, "Seaweed", results[1].(map[string]any)["source"])
}

func TestScanToolDisabled(t *testing.T) {
	provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}, tools: false})

	h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage})
	require.Len(t, provider.requests, 1)
	assert.Empty(t, provider.requests[0].Tools)
}

func TestScanInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		image    []byte
		filename string
	}{
		{name: "empty", image: nil, filename: "a.png"},
		{name: "wrong extension", image: pngImage, filename: "a.gif"},
		{name: "too large", image: append(append([]byte{}, pngImage...), make([]byte, 2<<20)...), filename: "a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
			h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})

			resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: tt.image, Filename: tt.filename})
			assert.Equal(t, dto.ScanStatusInvalidInput, resp.Status)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, 0, h.built)
		})
	}
}

func TestScanCallError(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})

	resp := h.svc.Scan(ctx, "s1", &dto.ScanRequest{Image: pngImage})
	assert.Equal(t, dto.ScanStatusCallError, resp.Status)
	assert.Contains(t, resp.Error, "quota exceeded")
	assert.Nil(t, resp.Verdict)

	entries, _ := h.repo.List(ctx, "s1")
	assert.Empty(t, entries)
	require.Len(t, h.bus.events, 1)
	assert.Equal(t, "call_error", h.bus.events[0].Payload()["status"])
}

func TestScanLocalCrossCheck(t *testing.T) {
	provider := &fakeProvider{text: "❌ NOT VEGAN"}
	h := newHarness(t, provider, harnessOpts{
		store:  credential.MapSource{"GOOGLE_API_KEY": "k"},
		reader: &fakeReader{text: "Ingredients: sugar, gelatin\nwhey powder."},
	})

	resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage})
	require.Equal(t, dto.ScanStatusOK, resp.Status)
	require.Len(t, resp.LocalCheck, 2)
	assert.Equal(t, "gelatin", resp.LocalCheck[0].Ingredient)
	assert.Equal(t, ingredient.StatusNonVegan, resp.LocalCheck[0].Status)
	assert.Equal(t, "whey powder", resp.LocalCheck[1].Ingredient)
}

func TestScanCrossCheckFailureDoesNotFailScan(t *testing.T) {
	provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
	h := newHarness(t, provider, harnessOpts{
		store:  credential.MapSource{"GOOGLE_API_KEY": "k"},
		reader: &fakeReader{err: errors.New("ocr down")},
	})

	resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage})
	assert.Equal(t, dto.ScanStatusOK, resp.Status)
	assert.Nil(t, resp.LocalCheck)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("web search request", func(t *testing.T) {
		provider := &fakeProvider{text: "⚠️ CAUTION: sources disagree"}
		h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}, tools: true})

		resp := h.svc.Search(ctx, "s1", &dto.SearchRequest{Query: "Parle-G biscuits"})
		require.Equal(t, dto.ScanStatusOK, resp.Status)
		assert.Equal(t, verdict.KindCaution, resp.Verdict.Kind)
		assert.Equal(t, "search", resp.Mode)
		require.Len(t, resp.Citations, 1)

		req := provider.requests[0]
		assert.True(t, req.WebSearch)
		assert.Empty(t, req.Tools)
		assert.Nil(t, req.Image)
		assert.Contains(t, req.Instruction, "Parle-G biscuits")
	})

	t.Run("blank query", func(t *testing.T) {
		h := newHarness(t, &fakeProvider{}, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})
		resp := h.svc.Search(ctx, "s1", &dto.SearchRequest{Query: "   "})
		assert.Equal(t, dto.ScanStatusInvalidInput, resp.Status)
	})

	t.Run("query too long", func(t *testing.T) {
		provider := &fakeProvider{}
		h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})
		resp := h.svc.Search(ctx, "s1", &dto.SearchRequest{Query: strings.Repeat("a", MaxQueryLength+1)})
		assert.Equal(t, dto.ScanStatusInvalidInput, resp.Status)
		assert.Empty(t, provider.requests)
	})

	t.Run("optional image", func(t *testing.T) {
		provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
		h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})
		h.svc.Search(ctx, "s1", &dto.SearchRequest{Query: "oreo", Image: pngImage, Filename: "p.png"})
		require.NotNil(t, provider.requests[0].Image)
	})

	t.Run("provider without web search", func(t *testing.T) {
		provider := &fakeProvider{err: llm.ErrUnsupported}
		h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})
		resp := h.svc.Search(ctx, "s1", &dto.SearchRequest{Query: "oreo"})
		assert.Equal(t, dto.ScanStatusCallError, resp.Status)
		assert.Contains(t, resp.Error, "web search is not available")
	})
}

func TestScanPassesImageThrough(t *testing.T) {
	provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}})

	gifImage := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: gifImage, Filename: "label.jpg"})
	require.Equal(t, dto.ScanStatusOK, resp.Status)
	require.Len(t, provider.requests, 1)
	assert.Equal(t, gifImage, provider.requests[0].Image.Data)
	assert.Equal(t, "image/gif", provider.requests[0].Image.MIMEType)
}

func TestScanCrossCheckSharesCallTimeout(t *testing.T) {
	provider := &fakeProvider{text: "✅ LIKELY VEGAN"}
	reader := &fakeReader{block: true}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}, reader: reader})
	h.svc.(*scanService).opts.Timeout = 50 * time.Millisecond

	start := time.Now()
	resp := h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, dto.ScanStatusOK, resp.Status)
	assert.Nil(t, resp.LocalCheck)

	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.Equal(t, 1, reader.calls)
	assert.True(t, reader.hadDeadline)
}

func TestScanDoesNotWaitForCrossCheckAfterCallError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	reader := &fakeReader{block: true}
	h := newHarness(t, provider, harnessOpts{store: credential.MapSource{"GOOGLE_API_KEY": "k"}, reader: reader})
	h.svc.(*scanService).opts.Timeout = time.Minute

	done := make(chan *dto.ScanResponse, 1)
	go func() {
		done <- h.svc.Scan(context.Background(), "s1", &dto.ScanRequest{Image: pngImage})
	}()

	select {
	case resp := <-done:
		assert.Equal(t, dto.ScanStatusCallError, resp.Status)
		assert.Nil(t, resp.LocalCheck)
	case <-time.After(5 * time.Second):
		t.Fatal("Scan waited on the OCR cross-check after the model call failed")
	}
}
