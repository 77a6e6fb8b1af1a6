package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vegan-agent-be/internal/constant"
	"vegan-agent-be/internal/credential"
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/metrics"
	"vegan-agent-be/internal/pkg/logger"
	"vegan-agent-be/internal/repository/contract"
	"vegan-agent-be/pkg/events"
	"vegan-agent-be/pkg/history"
	"vegan-agent-be/pkg/ingredient"
	"vegan-agent-be/pkg/llm"
	"vegan-agent-be/pkg/ocr"
	"vegan-agent-be/pkg/verdict"
)

type IScanService interface {
	Scan(ctx context.Context, sessionID string, req *dto.ScanRequest) *dto.ScanResponse
	Search(ctx context.Context, sessionID string, req *dto.SearchRequest) *dto.ScanResponse
}

// ProviderFactory builds a vision provider once the credential is known.
type ProviderFactory func(ctx context.Context, apiKey string) (llm.VisionProvider, error)

// EventPublisher sends scan events to an external bus (NATS).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

const MaxQueryLength = 500

type ScanOptions struct {
	ProviderName      string
	Timeout           time.Duration
	MaxUploadBytes    int64
	MaxToolRounds     int
	ToolLookupEnabled bool
}

type scanService struct {
	resolver       *credential.Resolver
	keys           contract.SessionKeyRepository
	histories      contract.HistoryRepository
	newProvider    ProviderFactory
	matcher        *ingredient.Matcher
	textReader     ocr.TextReader
	publisher      IPublisherService
	eventPublisher EventPublisher
	logger         logger.ILogger
	opts           ScanOptions
	now            func() time.Time
}

// NewScanService wires the scan flow. textReader, publisher and
// eventPublisher may be nil.
func NewScanService(
	resolver *credential.Resolver,
	keys contract.SessionKeyRepository,
	histories contract.HistoryRepository,
	newProvider ProviderFactory,
	matcher *ingredient.Matcher,
	textReader ocr.TextReader,
	publisher IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
	opts ScanOptions,
) IScanService {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = llm.DefaultMaxToolRounds
	}
	return &scanService{
		resolver:       resolver,
		keys:           keys,
		histories:      histories,
		newProvider:    newProvider,
		matcher:        matcher,
		textReader:     textReader,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		logger:         log,
		opts:           opts,
		now:            time.Now,
	}
}

func (s *scanService) Scan(ctx context.Context, sessionID string, req *dto.ScanRequest) *dto.ScanResponse {
	start := s.now()
	resp := newResponse(history.ModeScan, s.opts.ProviderName)

	mime, err := ValidateImage(req.Image, req.Filename, s.opts.MaxUploadBytes)
	if err != nil {
		return s.finish(ctx, sessionID, resp.Fail(dto.ScanStatusInvalidInput, err), start)
	}

	instruction := constant.ScanPromptV1
	vreq := llm.VisionRequest{Image: &llm.Image{Data: req.Image, MIMEType: mime}}
	if s.opts.ToolLookupEnabled && s.matcher != nil {
		instruction += constant.ScanToolHintV1
		vreq.Tools = []llm.Tool{s.countedTool()}
	}
	vreq.Instruction = instruction

	provider, ok := s.prepare(ctx, sessionID, resp)
	if !ok {
		return s.finish(ctx, sessionID, resp, start)
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	// the OCR cross-check runs next to the model call, under the same deadline
	var localCheck <-chan []ingredient.Result
	if s.textReader != nil && s.matcher != nil {
		localCheck = s.crossCheck(callCtx, req.Image)
	}

	s.analyze(callCtx, resp, provider, vreq)
	if localCheck != nil && resp.OK() {
		resp.LocalCheck = <-localCheck
	}
	return s.finish(ctx, sessionID, resp, start)
}

func (s *scanService) Search(ctx context.Context, sessionID string, req *dto.SearchRequest) *dto.ScanResponse {
	start := s.now()
	resp := newResponse(history.ModeSearch, s.opts.ProviderName)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return s.finish(ctx, sessionID, resp.Fail(dto.ScanStatusInvalidInput, errors.New("enter a product name to search")), start)
	}
	if len([]rune(query)) > MaxQueryLength {
		return s.finish(ctx, sessionID, resp.Fail(dto.ScanStatusInvalidInput, fmt.Errorf("search query is longer than %d characters", MaxQueryLength)), start)
	}

	vreq := llm.VisionRequest{
		Instruction: fmt.Sprintf(constant.SearchPromptV1, query),
		WebSearch:   true,
	}
	if len(req.Image) > 0 {
		mime, err := ValidateImage(req.Image, req.Filename, s.opts.MaxUploadBytes)
		if err != nil {
			return s.finish(ctx, sessionID, resp.Fail(dto.ScanStatusInvalidInput, err), start)
		}
		vreq.Image = &llm.Image{Data: req.Image, MIMEType: mime}
		vreq.Instruction += constant.SearchImageHintV1
	}

	if provider, ok := s.prepare(ctx, sessionID, resp); ok {
		callCtx, cancel := s.callContext(ctx)
		s.analyze(callCtx, resp, provider, vreq)
		cancel()
	}
	return s.finish(ctx, sessionID, resp, start)
}

// prepare resolves the credential and builds the provider. Nothing remote
// is contacted when the credential is missing.
func (s *scanService) prepare(ctx context.Context, sessionID string, resp *dto.ScanResponse) (llm.VisionProvider, bool) {
	entered, err := s.keys.APIKey(ctx, sessionID)
	if err != nil {
		s.logger.Warn("ScanService", "Failed to read session key", map[string]interface{}{"error": err.Error()})
	}

	cred, err := s.resolver.Resolve(entered)
	if err != nil {
		resp.Fail(dto.ScanStatusCredentialError, err)
		resp.Error = "⚠️ Enter " + s.resolver.Name() + " to start."
		return nil, false
	}

	provider, err := s.newProvider(ctx, cred.Value)
	if err != nil {
		resp.Fail(dto.ScanStatusCallError, err)
		return nil, false
	}
	resp.Provider = provider.Name()
	return provider, true
}

// callContext bounds the remote call and the OCR cross-check by opts.Timeout.
func (s *scanService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// analyze makes the one remote call and classifies its text.
func (s *scanService) analyze(ctx context.Context, resp *dto.ScanResponse, provider llm.VisionProvider, vreq llm.VisionRequest) {
	out, err := provider.Analyze(ctx, vreq, llm.WithMaxToolRounds(s.opts.MaxToolRounds))
	if err != nil {
		if errors.Is(err, llm.ErrUnsupported) {
			resp.Fail(dto.ScanStatusCallError, fmt.Errorf("web search is not available with the %s provider", provider.Name()))
			return
		}
		resp.Fail(dto.ScanStatusCallError, err)
		return
	}

	v := verdict.Classify(out.Text)
	resp.Status = dto.ScanStatusOK
	resp.Verdict = &v
	resp.Citations = out.Citations
	resp.ToolCalls = out.ToolCalls
	if out.Model != "" {
		resp.Provider = provider.Name() + "/" + out.Model
	}
}

// countedTool wraps the lookup tool so every call shows up in metrics.
func (s *scanService) countedTool() llm.Tool {
	t := ingredient.Tool(s.matcher)
	inner := t.Handler
	t.Handler = func(ctx context.Context, args map[string]any) (map[string]any, error) {
		metrics.ToolCalls.Inc()
		res, err := inner(ctx, args)
		if err != nil {
			s.logger.Warn("ScanService", "Lookup tool called with bad arguments", map[string]interface{}{"error": err.Error()})
		}
		return res, err
	}
	return t
}

func (s *scanService) crossCheck(ctx context.Context, image []byte) <-chan []ingredient.Result {
	out := make(chan []ingredient.Result, 1)
	go func() {
		defer close(out)
		text, err := s.textReader.ReadText(ctx, image)
		if err != nil {
			s.logger.Warn("ScanService", "OCR cross-check failed", map[string]interface{}{"error": err.Error()})
			out <- nil
			return
		}
		results := s.matcher.Match(ingredient.SplitIngredients(text))
		for _, r := range results {
			metrics.IngredientMatches.WithLabelValues(string(r.Status)).Inc()
		}
		out <- results
	}()
	return out
}

// finish records the outcome: history for verdicts, then events and metrics
// for every outcome.
func (s *scanService) finish(ctx context.Context, sessionID string, resp *dto.ScanResponse, start time.Time) *dto.ScanResponse {
	took := s.now().Sub(start)
	kind := string(verdict.KindUnknown)

	if resp.OK() {
		kind = string(resp.Verdict.Kind)
		entry := history.NewEntry(*resp.Verdict, history.Mode(resp.Mode), s.now().UTC())
		if err := s.histories.Push(ctx, sessionID, entry); err != nil {
			s.logger.Error("ScanService", "Failed to save history", map[string]interface{}{"error": err.Error()})
		}
	}

	metrics.ScansTotal.WithLabelValues(resp.Mode, string(resp.Status), kind).Inc()
	metrics.ScanDuration.WithLabelValues(resp.Mode).Observe(took.Seconds())

	evt := events.NewScanCompleted(sessionID, resp.Mode, string(resp.Status), kind, resp.Provider, resp.ToolCalls, took)
	s.publish(ctx, evt)

	details := map[string]interface{}{
		"mode":        resp.Mode,
		"status":      resp.Status,
		"verdict":     kind,
		"provider":    resp.Provider,
		"tool_calls":  resp.ToolCalls,
		"duration_ms": took.Milliseconds(),
	}
	if resp.OK() {
		s.logger.Info("ScanService", "Scan completed", details)
	} else {
		details["error"] = resp.Error
		s.logger.Warn("ScanService", "Scan did not produce a verdict", details)
	}
	return resp
}

// publish is best effort: a broken bus never fails a scan.
func (s *scanService) publish(ctx context.Context, evt events.ScanCompleted) {
	if s.publisher != nil {
		payload, err := json.Marshal(evt)
		if err == nil {
			err = s.publisher.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("ScanService", "Failed to publish scan event", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ScanService", "Failed to publish scan event to NATS", map[string]interface{}{"error": err.Error()})
		}
	}
}

func newResponse(mode history.Mode, provider string) *dto.ScanResponse {
	return &dto.ScanResponse{
		Mode:       string(mode),
		Provider:   provider,
		Disclaimer: dto.Disclaimer,
	}
}
