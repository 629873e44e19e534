package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/recall-ai/recall/pkg/cache"
)

// Tool argument structs.

type lookupArgs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type insertArgs struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  string `json:"context"`
}

// toolHandler is a function that handles a tool call.
type toolHandler func(s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"recall_lookup":   handleLookup,
	"recall_insert":   handleInsert,
	"recall_stats":    handleStats,
	"recall_maintain": handleMaintain,
	"recall_clear":    handleClear,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "recall_lookup",
		Description: "Look up a cached answer for a question. Checks recent lookups, exact matches, and similar previously answered questions before giving up.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"question"},
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to look up",
				},
				"context": map[string]any{
					"type":        "string",
					"description": "Context tag that scopes similar-question matching (optional)",
				},
			},
		},
	},
	{
		Name:        "recall_insert",
		Description: "Store an answer so future lookups of the same or a similar question can skip the backend.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"question", "answer"},
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question that was answered",
				},
				"answer": map[string]any{
					"type":        "string",
					"description": "The answer to cache",
				},
				"context": map[string]any{
					"type":        "string",
					"description": "Context tag that scopes similar-question matching (optional)",
				},
			},
		},
	},
	{
		Name:        "recall_stats",
		Description: "Show cache statistics (entries, hits by kind, misses, hit rate, store health).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "recall_maintain",
		Description: "Run a maintenance pass: evict stale or excess entries and save the snapshot if it changed.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "recall_clear",
		Description: "Remove every cached entry and persist the empty snapshot.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

func handleLookup(s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args lookupArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Question == "" {
		return errorResult("question is required")
	}

	entry, match := s.cache.Lookup(args.Question, args.Context)
	if match == cache.LookupMiss {
		return textResult("No cached answer found.")
	}
	return textResult(formatEntry(entry, match))
}

func handleInsert(s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args insertArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}

	if err := s.cache.Insert(args.Question, args.Answer, args.Context); err != nil {
		return errorResult("Error storing answer: " + err.Error())
	}
	return textResult("Answer stored.")
}

func handleStats(s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatStats(s.cache.Stats()))
}

func handleMaintain(s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatMaintain(s.cache.Maintain()))
}

func handleClear(s *Server, _ json.RawMessage) ToolCallResult {
	n := s.cache.Clear()
	return textResult(fmt.Sprintf("Cleared %d cached entries.", n))
}
