package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flatPayload = `{
	"tokens": [
		{"type": "identifier", "value": "x", "line": 1},
		{"type": "symbol", "value": "=", "line": 1},
		{"type": "number", "value": "1", "line": 1}
	],
	"stats": {"total_tokens": 3, "keywords": 0, "identifiers": 1, "symbols": 1, "numbers": 1, "strings": 0},
	"lex_errors": [],
	"syn_errors": [{"line": 1, "message": "expected ';'"}],
	"sem_errors": null,
	"is_lex_valid": true,
	"is_syn_valid": false,
	"is_sem_valid": false
}`

const groupedPayload = `{
	"identifiers": {"count": 1, "tokens": [{"value": "x", "line": 1, "column": 1}]},
	"symbols": {"count": 1, "tokens": [{"value": "=", "line": 1, "column": 3}]},
	"numbers": {"count": 1, "tokens": [{"value": "1", "line": 1, "column": 5}]},
	"errors": {"count": 1, "tokens": [{"line": 1, "message": "expected ';'", "type": "syntactic"}]}
}`

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Shape
	}{
		{"flat", flatPayload, ShapeFlat},
		{"grouped", groupedPayload, ShapeGrouped},
		{"canonical", `{"tokens": [], "stage_errors": {}}`, ShapeCanonical},
		{"errors only flat", `{"lex_errors": []}`, ShapeFlat},
		{"unknown", `{"foo": 1}`, ShapeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &payload))
			assert.Equal(t, tt.want, DetectShape(payload))
		})
	}
}

func TestNormalizeFlat(t *testing.T) {
	result, err := Normalize([]byte(flatPayload))
	require.NoError(t, err)

	require.Len(t, result.Tokens, 3)
	assert.Equal(t, Token{Type: "identifier", Value: "x", Line: 1}, result.Tokens[0])
	assert.Equal(t, 3, result.Stats.Get(StatTotalTokens))
	assert.Equal(t, 1, result.Stats.Get(StatSymbols))
	assert.Equal(t, 0, result.Stats.Get(StatComments))

	assert.Empty(t, result.Errors(StageLexical))
	assert.NotNil(t, result.Errors(StageSemantic))
	require.Len(t, result.Errors(StageSyntactic), 1)
	assert.Equal(t, ErrorRecord{Line: 1, Message: "expected ';'"}, result.Errors(StageSyntactic)[0])

	assert.True(t, result.Status(StageLexical).Valid)
	assert.False(t, result.Status(StageSyntactic).Valid)
	assert.False(t, result.Status(StageSemantic).Valid)
	assert.Equal(t, "no lexical errors found", result.Status(StageLexical).Message)
	assert.Equal(t, "1 syntactic error", result.Status(StageSyntactic).Message)
}

func TestNormalizeShapeInvariance(t *testing.T) {
	flat, err := Normalize([]byte(flatPayload))
	require.NoError(t, err)

	grouped, err := Normalize([]byte(groupedPayload))
	require.NoError(t, err)

	assert.Equal(t, flat.Tokens, grouped.Tokens)
	assert.Equal(t, flat.Stats, grouped.Stats)
	assert.Equal(t, flat.StageErrors, grouped.StageErrors)
	assert.Equal(t, flat.StageStatus, grouped.StageStatus)
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize([]byte(flatPayload))
	require.NoError(t, err)

	second := NormalizeResult(first)
	assert.Equal(t, first, second)

	data, err := json.Marshal(first)
	require.NoError(t, err)

	third, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestNormalizeNullAndMissingLists(t *testing.T) {
	result, err := Normalize([]byte(`{"tokens": null, "lex_errors": null}`))
	require.NoError(t, err)

	assert.NotNil(t, result.Tokens)
	assert.Empty(t, result.Tokens)
	for _, stage := range Stages {
		assert.NotNil(t, result.Errors(stage), stage.String())
		assert.True(t, result.Status(stage).Valid, stage.String())
	}
	for _, category := range StatCategories {
		v, ok := result.Stats[category]
		assert.True(t, ok, category)
		assert.Zero(t, v, category)
	}
}

func TestNormalizeTotalTokensFollowsTokenList(t *testing.T) {
	result, err := Normalize([]byte(`{
		"tokens": [{"type": "keyword", "value": "int", "line": 1}],
		"stats": {"total_tokens": 42, "keywords": 1}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(StatTotalTokens))
}

func TestNormalizeErrorFieldFallbacks(t *testing.T) {
	result, err := Normalize([]byte(`{
		"tokens": [],
		"lex_errors": [
			{"Line": 2, "error": "bad char"},
			{"línea": 3, "mensaje": "cadena sin cerrar"},
			{"LINE": 4, "Message": "folded"},
			"plain text finding"
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, []ErrorRecord{
		{Line: 2, Message: "bad char"},
		{Line: 3, Message: "cadena sin cerrar"},
		{Line: 4, Message: "folded"},
		{Message: "plain text finding"},
	}, result.Errors(StageLexical))
	assert.False(t, result.Status(StageLexical).Valid)
	assert.False(t, result.Status(StageSyntactic).Valid)
}

func TestNormalizeSchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantField string
	}{
		{"not json", `{`, "(root)"},
		{"empty", ``, "(root)"},
		{"array root", `[1, 2]`, "(root)"},
		{"unknown shape", `{"foo": "bar"}`, "tokens"},
		{"tokens not list", `{"tokens": "abc"}`, "tokens"},
		{"token missing value", `{"tokens": [{"type": "keyword", "line": 1}]}`, "tokens[0].value"},
		{"token bad line", `{"tokens": [{"type": "keyword", "value": "int", "line": "one"}]}`, "tokens[0].line"},
		{"negative line", `{"tokens": [{"type": "keyword", "value": "int", "line": -1}]}`, "tokens[0].line"},
		{"error missing message", `{"tokens": [], "syn_errors": [{"line": 1}]}`, "syn_errors[0].message"},
		{"bad validity flag", `{"tokens": [], "is_lex_valid": "yes"}`, "is_lex_valid"},
		{"bad stat", `{"tokens": [], "stats": {"keywords": "many"}}`, "stats.keywords"},
		{"grouped missing tokens", `{"keywords": {"count": 2}}`, "keywords.tokens"},
		{"grouped unknown stage", `{"errors": {"tokens": [{"message": "x", "type": "runtime"}]}}`, "errors.tokens[0].stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Normalize([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, result)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.wantField, schemaErr.Field)
			assert.True(t, IsSchemaError(err))
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(flatPayload), &payload))

	before, err := json.Marshal(payload)
	require.NoError(t, err)

	_, err = NormalizePayload(payload)
	require.NoError(t, err)

	after, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	original := &Result{Tokens: []Token{{Type: "keyword", Value: "int", Line: 1}}}
	normalized := NormalizeResult(original)
	normalized.Tokens[0].Value = "changed"
	assert.Equal(t, "int", original.Tokens[0].Value)
	assert.Nil(t, original.StageErrors)
}

func TestNormalizeGroupedErrorsByStage(t *testing.T) {
	result, err := Normalize([]byte(`{
		"keywords": {"tokens": [{"value": "int", "line": 1}]},
		"errors": {"semantic": [{"line": 1, "message": "variable 'x' declared twice"}]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.Get(StatKeywords))
	assert.Equal(t, "keyword", result.Tokens[0].Type)
	assert.True(t, result.Status(StageLexical).Valid)
	assert.True(t, result.Status(StageSyntactic).Valid)
	assert.False(t, result.Status(StageSemantic).Valid)
}

func TestNormalizeAny(t *testing.T) {
	fromBytes, err := NormalizeAny([]byte(flatPayload))
	require.NoError(t, err)

	fromResult, err := NormalizeAny(fromBytes)
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromResult)

	_, err = NormalizeAny(42)
	assert.True(t, IsSchemaError(err))

	var nilResult *Result
	_, err = NormalizeAny(nilResult)
	assert.True(t, IsSchemaError(err))
}

func TestNormalizeLineRange(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantReason string
	}{
		{"float beyond int", `1e30`, "must be an integer in range"},
		{"float beyond float64", `1e400`, "must be an integer in range"},
		{"integer beyond int64", `99999999999999999999`, "must be an integer in range"},
		{"fractional", `1.5`, "must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `{"tokens": [{"type": "keyword", "value": "int", "line": ` + tt.line + `}]}`
			result, err := Normalize([]byte(payload))
			require.Error(t, err)
			assert.Nil(t, result)

			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, "tokens[0].line", schemaErr.Field)
			assert.Equal(t, tt.wantReason, schemaErr.Reason)
		})
	}
}

func TestNormalizeWholeFloatLine(t *testing.T) {
	result, err := Normalize([]byte(`{"tokens": [{"type": "keyword", "value": "int", "line": 3.0}]}`))
	require.NoError(t, err)
	require.Len(t, result.Tokens, 1)
	assert.Equal(t, 3, result.Tokens[0].Line)
}
