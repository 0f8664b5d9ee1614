package api

import (
	"fmt"
	"net/http"

	"github.com/men16922/brandy-serverless-sub000/internal/config"
	"github.com/men16922/brandy-serverless-sub000/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the mounted routes.
func buildSpec(cfg *config.Config) (*openapi.Spec, error) {
	var meta openapi.Config
	if err := meta.Finalize(nil); err != nil {
		return nil, err
	}

	spec := openapi.NewSpec(meta.Title, cfg.Version)
	spec.SetDescription(meta.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"BusinessProfile": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"industry":    {Type: "string"},
				"region":      {Type: "string"},
				"size":        {Type: "string"},
				"description": {Type: "string"},
			},
			Required: []string{"industry", "region", "size"},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id":   {Type: "string"},
				"current_step": {Type: "integer"},
				"status":       {Type: "string"},
			},
		},
		"Variant": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"url":         {Type: "string"},
				"provider":    {Type: "string"},
				"style":       {Type: "string"},
				"durable":     {Type: "boolean"},
				"is_fallback": {Type: "boolean"},
			},
		},
		"Error": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"error": {Type: "string"},
			},
		},
	})

	sessionParam := openapi.PathParam("id", "Session identifier")

	spec.Paths["/sessions"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Create a workflow session",
			Tags:        []string{"sessions"},
			RequestBody: openapi.RequestBodyJSON("BusinessProfile", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created session", "Session"),
				400: openapi.ResponseJSON("Invalid profile", "Error"),
			},
		},
	}
	spec.Paths["/sessions/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Fetch a session",
			Tags:       []string{"sessions"},
			Parameters: []*openapi.Parameter{sessionParam},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Session state", "Session"),
				404: openapi.ResponseJSON("Not found", "Error"),
				410: openapi.ResponseJSON("Expired", "Error"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a session and its artifacts",
			Tags:       []string{"sessions"},
			Parameters: []*openapi.Parameter{sessionParam},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseJSON("Not found", "Error"),
			},
		},
	}
	spec.Paths["/generation/generate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Generate image variants for the current step",
			Tags:    []string{"generation"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Committed variants", "Variant"),
				409: openapi.ResponseJSON("Wrong step", "Error"),
			},
		},
	}
	spec.Paths["/generation/select"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Select a variant and advance the workflow",
			Tags:    []string{"generation"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Selection result", "Session"),
				404: openapi.ResponseJSON("Variant not in set", "Error"),
			},
		},
	}

	return spec, nil
}

// specRoute serializes the spec once and serves it at /openapi.json.
func specRoute(cfg *config.Config, mux *http.ServeMux) error {
	spec, err := buildSpec(cfg)
	if err != nil {
		return fmt.Errorf("build openapi spec: %w", err)
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}

	mux.Handle("GET /openapi.json", openapi.ServeSpec(data))
	return nil
}
