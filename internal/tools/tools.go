package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/domain-agent/internal/lookup"
	"github.com/domain-agent/internal/metrics"
)

// Service exposes the domain-resolution engine as named tool operations.
type Service struct {
	resolver           *lookup.Resolver
	registry           *Registry
	metrics            *metrics.Metrics
	defaultConcurrency int
}

// NewService creates the tool service and registers all operations.
func NewService(resolver *lookup.Resolver, m *metrics.Metrics, defaultConcurrency int) *Service {
	if defaultConcurrency < 1 || defaultConcurrency > lookup.MaxConcurrency {
		defaultConcurrency = lookup.DefaultConcurrency
	}

	s := &Service{
		resolver:           resolver,
		registry:           NewRegistry(),
		metrics:            m,
		defaultConcurrency: defaultConcurrency,
	}
	s.registerTools()
	return s
}

// Registry returns the tool registry for transport layers.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Call dispatches a tool invocation by name.
func (s *Service) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := s.registry.Get(name)
	if !ok {
		return nil, argumentErrorf("unknown tool: %s", name)
	}

	callID := uuid.New().String()
	log := logrus.WithFields(logrus.Fields{"tool": name, "call_id": callID})
	log.Info("tool call started")

	result, err := tool.Handler(ctx, args)
	if err != nil {
		s.metrics.RecordToolCall(name, "rejected")
		log.WithError(err).Warn("tool call rejected")
		return nil, err
	}

	s.metrics.RecordToolCall(name, "ok")
	log.Info("tool call completed")
	return result, nil
}

func (s *Service) registerTools() {
	concurrencySchema := map[string]any{
		"type":        "integer",
		"minimum":     1,
		"maximum":     lookup.MaxConcurrency,
		"default":     s.defaultConcurrency,
		"description": "Maximum number of lookups in flight",
	}
	includeRawSchema := map[string]any{
		"type":        "boolean",
		"default":     false,
		"description": "Keep the raw protocol payload on every result",
	}

	s.registry.Register(&Tool{
		Name:        "check_domain",
		Description: "Check whether a single domain name is registered",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"domain":             map[string]any{"type": "string", "description": "Domain name to check"},
				"includeRawResponse": includeRawSchema,
			},
			"required": []string{"domain"},
		},
		Handler: s.checkDomain,
	})

	s.registry.Register(&Tool{
		Name:        "check_domains",
		Description: "Check a list of domain names in parallel",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"domains":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1},
				"concurrency":        concurrencySchema,
				"includeRawResponse": includeRawSchema,
			},
			"required": []string{"domains"},
		},
		Handler: s.checkDomains,
	})

	s.registry.Register(&Tool{
		Name:        "check_name_extensions",
		Description: "Check one name across multiple extensions",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":               map[string]any{"type": "string", "description": "Base name without extension"},
				"extensions":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1},
				"concurrency":        concurrencySchema,
				"includeRawResponse": includeRawSchema,
			},
			"required": []string{"name", "extensions"},
		},
		Handler: s.checkNameExtensions,
	})

	s.registry.Register(&Tool{
		Name:        "check_names_extensions",
		Description: "Check multiple names across multiple extensions",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"names":              map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1},
				"extensions":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 1},
				"concurrency":        concurrencySchema,
				"includeRawResponse": includeRawSchema,
			},
			"required": []string{"names", "extensions"},
		},
		Handler: s.checkNamesExtensions,
	})
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return argumentErrorf("invalid arguments: %v", err)
	}
	return nil
}

func (s *Service) resolveConcurrency(requested *int) (int, error) {
	if requested == nil {
		return s.defaultConcurrency, nil
	}
	if *requested < 1 || *requested > lookup.MaxConcurrency {
		return 0, argumentErrorf("concurrency must be between 1 and %d", lookup.MaxConcurrency)
	}
	return *requested, nil
}

type checkDomainArgs struct {
	Domain             string `json:"domain"`
	IncludeRawResponse bool   `json:"includeRawResponse"`
}

func (s *Service) checkDomain(ctx context.Context, raw json.RawMessage) (any, error) {
	var args checkDomainArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Domain == "" {
		return nil, argumentErrorf("domain is required")
	}

	result := s.resolver.Check(ctx, args.Domain)
	return filterRaw(result, args.IncludeRawResponse), nil
}

type checkDomainsArgs struct {
	Domains            []string `json:"domains"`
	Concurrency        *int     `json:"concurrency"`
	IncludeRawResponse bool     `json:"includeRawResponse"`
}

func (s *Service) checkDomains(ctx context.Context, raw json.RawMessage) (any, error) {
	var args checkDomainsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if len(args.Domains) == 0 {
		return nil, argumentErrorf("domains must be a non-empty array")
	}
	concurrency, err := s.resolveConcurrency(args.Concurrency)
	if err != nil {
		return nil, err
	}

	results := s.resolver.CheckAll(ctx, args.Domains, concurrency)
	return buildSummary(filterRawAll(results, args.IncludeRawResponse)), nil
}

type checkNameExtensionsArgs struct {
	Name               string   `json:"name"`
	Extensions         []string `json:"extensions"`
	Concurrency        *int     `json:"concurrency"`
	IncludeRawResponse bool     `json:"includeRawResponse"`
}

func (s *Service) checkNameExtensions(ctx context.Context, raw json.RawMessage) (any, error) {
	var args checkNameExtensionsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Name == "" {
		return nil, argumentErrorf("name is required")
	}
	if len(args.Extensions) == 0 {
		return nil, argumentErrorf("extensions must be a non-empty array")
	}
	concurrency, err := s.resolveConcurrency(args.Concurrency)
	if err != nil {
		return nil, err
	}

	domains := crossProduct([]string{args.Name}, args.Extensions)
	results := s.resolver.CheckAll(ctx, domains, concurrency)
	return buildSummary(filterRawAll(results, args.IncludeRawResponse)), nil
}

type checkNamesExtensionsArgs struct {
	Names              []string `json:"names"`
	Extensions         []string `json:"extensions"`
	Concurrency        *int     `json:"concurrency"`
	IncludeRawResponse bool     `json:"includeRawResponse"`
}

func (s *Service) checkNamesExtensions(ctx context.Context, raw json.RawMessage) (any, error) {
	var args checkNamesExtensionsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if len(args.Names) == 0 {
		return nil, argumentErrorf("names must be a non-empty array")
	}
	if len(args.Extensions) == 0 {
		return nil, argumentErrorf("extensions must be a non-empty array")
	}
	concurrency, err := s.resolveConcurrency(args.Concurrency)
	if err != nil {
		return nil, err
	}

	// One flat batch over the full name x extension cross product keeps the
	// concurrency bound global rather than per-name.
	domains := crossProduct(args.Names, args.Extensions)
	results := s.resolver.CheckAll(ctx, domains, concurrency)
	filtered := filterRawAll(results, args.IncludeRawResponse)

	nested := NamesSummary{Names: make([]NameSummary, 0, len(args.Names))}
	perName := len(args.Extensions)
	for i, name := range args.Names {
		sub := buildSummary(filtered[i*perName : (i+1)*perName])
		nested.Names = append(nested.Names, NameSummary{Name: name, Summary: sub})
		nested.Total += sub.Total
		nested.Available += sub.Available
		nested.Taken += sub.Taken
		nested.Errors += sub.Errors
		nested.RateLimited += sub.RateLimited
		nested.Unknown += sub.Unknown
	}
	return nested, nil
}

func crossProduct(names, extensions []string) []string {
	domains := make([]string, 0, len(names)*len(extensions))
	for _, name := range names {
		for _, ext := range extensions {
			domains = append(domains, fmt.Sprintf("%s.%s", name, ext))
		}
	}
	return domains
}
