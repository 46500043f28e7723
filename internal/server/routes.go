// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/glimpse-dev/glimpse/internal/search"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc SearchService) {
	s.search = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search images by caption",
		Description: "Embeds the query and returns the k images whose captions are nearest, best first.",
		Tags:        []string{"search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Index and embedder status",
		Tags:        []string{"system"},
	}, s.handleStatus)
}

// --- Request/Response types for huma ---

type searchInput struct {
	Query string `query:"query" required:"true" minLength:"1" doc:"Free-text query"`
	K     int    `query:"k" doc:"Number of results (server default when omitted)"`

	kGiven bool
}

// Resolve records whether k was sent, so an explicit k=0 is not mistaken
// for an omitted one.
func (i *searchInput) Resolve(ctx huma.Context) []error {
	i.kGiven = ctx.Query("k") != ""
	return nil
}

type searchOutput struct {
	Body []search.Result
}

type statusBody struct {
	State   string `json:"status" example:"ok" doc:"Server status"`
	Version string `json:"version" doc:"Server version"`
	search.Status
}

type statusOutput struct {
	Body statusBody
}

// --- Handlers ---

func (s *Server) handleSearch(ctx context.Context, input *searchInput) (*searchOutput, error) {
	k := input.K
	if !input.kGiven {
		k = s.cfg.DefaultK
	}
	// k above max_k is capped, not rejected.
	k = min(k, s.cfg.MaxK)

	return &searchOutput{Body: s.search.Search(ctx, input.Query, k)}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *struct{}) (*statusOutput, error) {
	out := &statusOutput{}
	out.Body.State = "ok"
	out.Body.Version = s.cfg.Version
	out.Body.Status = s.search.Status()
	return out, nil
}
