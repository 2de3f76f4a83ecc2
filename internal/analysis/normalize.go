package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Shape identifies which payload layout a service response uses
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeFlat is a token list with stats and one error list per stage
	ShapeFlat
	// ShapeGrouped keys tokens by category, each with a count and token list
	ShapeGrouped
	// ShapeCanonical is the serialized form of Result
	ShapeCanonical
)

// String returns the shape name
func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeGrouped:
		return "grouped"
	case ShapeCanonical:
		return "canonical"
	default:
		return "unknown"
	}
}

// flat payload error list and validity keys per stage
var flatStageKeys = map[Stage][2]string{
	StageLexical:   {"lex_errors", "is_lex_valid"},
	StageSyntactic: {"syn_errors", "is_syn_valid"},
	StageSemantic:  {"sem_errors", "is_sem_valid"},
}

// tokenCategories maps grouped payload categories to the token type they hold
var tokenCategories = []struct {
	category  string
	tokenType string
}{
	{StatKeywords, "keyword"},
	{StatIdentifiers, "identifier"},
	{StatSymbols, "symbol"},
	{StatNumbers, "number"},
	{StatStrings, "string"},
	{StatComments, "comment"},
}

// Field name fallbacks for the differing casing and language of historical payloads
var (
	lineKeys    = []string{"line", "linea", "línea"}
	messageKeys = []string{"message", "error", "mensaje"}
	stageKeys   = []string{"stage", "type"}
	columnKeys  = []string{"column", "col"}
)

// Normalize decodes a raw service response and converts it to the canonical Result.
func Normalize(data []byte) (*Result, error) {
	payload, err := decodePayload(data)
	if err != nil {
		return nil, err
	}
	return NormalizePayload(payload)
}

// NormalizeAny accepts raw JSON, a decoded payload or an existing Result.
func NormalizeAny(v any) (*Result, error) {
	switch in := v.(type) {
	case []byte:
		return Normalize(in)
	case json.RawMessage:
		return Normalize(in)
	case string:
		return Normalize([]byte(in))
	case map[string]any:
		return NormalizePayload(in)
	case *Result:
		if in == nil {
			return nil, NewSchemaError("(root)", "must not be null")
		}
		return NormalizeResult(in), nil
	case Result:
		return NormalizeResult(&in), nil
	default:
		return nil, NewSchemaError("(root)", fmt.Sprintf("has unsupported type %T", v))
	}
}

// NormalizeResult returns a canonical copy of an existing result. Normalizing
// an already-normalized result yields an equal value.
func NormalizeResult(r *Result) *Result {
	if r == nil {
		return canonicalize(&Result{})
	}
	return canonicalize(r.Clone())
}

// NormalizePayload converts a decoded JSON object. The payload is never modified.
func NormalizePayload(payload map[string]any) (*Result, error) {
	switch DetectShape(payload) {
	case ShapeCanonical:
		return fromCanonical(payload)
	case ShapeFlat:
		return fromFlat(payload)
	case ShapeGrouped:
		return fromGrouped(payload)
	default:
		return nil, missingField("tokens")
	}
}

// DetectShape resolves which known layout a payload uses
func DetectShape(payload map[string]any) Shape {
	if payload == nil {
		return ShapeUnknown
	}
	if hasAny(payload, "stage_errors", "stage_status") {
		return ShapeCanonical
	}
	if hasAny(payload, "tokens", "lex_errors", "syn_errors", "sem_errors") {
		return ShapeFlat
	}
	if _, ok := payload["errors"].(map[string]any); ok {
		return ShapeGrouped
	}
	for _, c := range tokenCategories {
		if _, ok := payload[c.category].(map[string]any); ok {
			return ShapeGrouped
		}
	}
	return ShapeUnknown
}

func decodePayload(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewSchemaError("(root)", "is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, NewSchemaError("(root)", "is not valid JSON: "+err.Error())
	}

	payload, ok := v.(map[string]any)
	if !ok {
		return nil, invalidField("(root)", "an object")
	}
	return payload, nil
}

// fromFlat converts the token-list-with-stats layout
func fromFlat(payload map[string]any) (*Result, error) {
	rawTokens, ok := payload["tokens"]
	if !ok {
		return nil, missingField("tokens")
	}
	tokens, err := decodeTokens(rawTokens, "tokens", "")
	if err != nil {
		return nil, err
	}

	stats, err := decodeStats(payload["stats"], "stats")
	if err != nil {
		return nil, err
	}

	result := &Result{
		Stats:       stats,
		Tokens:      tokens,
		StageErrors: make(map[Stage][]ErrorRecord, len(Stages)),
		StageStatus: make(map[Stage]StageStatus, len(Stages)),
	}

	flags := make(map[Stage]*bool, len(Stages))
	for _, stage := range Stages {
		keys := flatStageKeys[stage]
		errs, err := decodeErrorList(payload[keys[0]], keys[0])
		if err != nil {
			return nil, err
		}
		result.StageErrors[stage] = errs

		if raw, ok := payload[keys[1]]; ok && raw != nil {
			flag, ok := raw.(bool)
			if !ok {
				return nil, invalidField(keys[1], "a boolean")
			}
			flags[stage] = &flag
		}
	}

	upstreamValid := true
	for _, stage := range Stages {
		derived := upstreamValid && len(result.StageErrors[stage]) == 0
		valid := derived
		if flag := flags[stage]; flag != nil {
			valid = derived && *flag
		}
		result.StageStatus[stage] = StageStatus{Valid: valid}
		upstreamValid = derived
	}

	return canonicalize(result), nil
}

// fromGrouped converts the grouped-by-category layout
func fromGrouped(payload map[string]any) (*Result, error) {
	result := &Result{
		Stats:       make(Stats, len(StatCategories)),
		StageErrors: make(map[Stage][]ErrorRecord, len(Stages)),
	}

	type positioned struct {
		token  Token
		column int
		seq    int
	}
	var all []positioned

	for _, c := range tokenCategories {
		raw, ok := payload[c.category]
		if !ok || raw == nil {
			continue
		}
		group, ok := raw.(map[string]any)
		if !ok {
			return nil, invalidField(c.category, "an object")
		}

		rawTokens, ok := group["tokens"]
		if !ok {
			return nil, missingField(c.category + ".tokens")
		}
		list, err := asList(rawTokens, c.category+".tokens")
		if err != nil {
			return nil, err
		}

		for i, item := range list {
			field := fmt.Sprintf("%s.tokens[%d]", c.category, i)
			tok, err := decodeToken(item, field, c.tokenType)
			if err != nil {
				return nil, err
			}
			column := 0
			if obj, ok := item.(map[string]any); ok {
				if v, ok := lookupFolded(obj, columnKeys...); ok {
					if column, err = toInt(v, field+".column"); err != nil {
						return nil, err
					}
				}
			}
			all = append(all, positioned{token: tok, column: column, seq: len(all)})
		}

		count := len(list)
		if v, ok := group["count"]; ok && v != nil {
			if count, err = toInt(v, c.category+".count"); err != nil {
				return nil, err
			}
		}
		result.Stats[c.category] = count
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].token.Line != all[j].token.Line {
			return all[i].token.Line < all[j].token.Line
		}
		if all[i].column != all[j].column {
			return all[i].column < all[j].column
		}
		return all[i].seq < all[j].seq
	})
	result.Tokens = make([]Token, len(all))
	for i, p := range all {
		result.Tokens[i] = p.token
	}

	if err := decodeGroupedErrors(payload["errors"], result.StageErrors); err != nil {
		return nil, err
	}

	return canonicalize(result), nil
}

// decodeGroupedErrors reads the errors pseudo-category, either as a
// count/tokens group whose entries carry their stage, or keyed by stage.
func decodeGroupedErrors(raw any, into map[Stage][]ErrorRecord) error {
	if raw == nil {
		return nil
	}
	group, ok := raw.(map[string]any)
	if !ok {
		return invalidField("errors", "an object")
	}

	if rawList, ok := group["tokens"]; ok {
		list, err := asList(rawList, "errors.tokens")
		if err != nil {
			return err
		}
		for i, item := range list {
			field := fmt.Sprintf("errors.tokens[%d]", i)
			obj, ok := item.(map[string]any)
			if !ok {
				return invalidField(field, "an object")
			}
			rawStage, ok := lookupFolded(obj, stageKeys...)
			if !ok {
				return missingField(field + ".stage")
			}
			name, err := toString(rawStage, field+".stage")
			if err != nil {
				return err
			}
			stage, ok := ParseStage(name)
			if !ok {
				return NewSchemaError(field+".stage", fmt.Sprintf("has unknown stage %q", name))
			}
			rec, err := decodeErrorRecord(item, field)
			if err != nil {
				return err
			}
			into[stage] = append(into[stage], rec)
		}
		return nil
	}

	for _, stage := range Stages {
		errs, err := decodeErrorList(group[string(stage)], "errors."+string(stage))
		if err != nil {
			return err
		}
		into[stage] = errs
	}
	return nil
}

// fromCanonical reads the serialized Result layout
func fromCanonical(payload map[string]any) (*Result, error) {
	rawTokens, ok := payload["tokens"]
	if !ok {
		return nil, missingField("tokens")
	}
	tokens, err := decodeTokens(rawTokens, "tokens", "")
	if err != nil {
		return nil, err
	}

	stats, err := decodeStats(payload["stats"], "stats")
	if err != nil {
		return nil, err
	}

	result := &Result{
		Stats:       stats,
		Tokens:      tokens,
		StageErrors: make(map[Stage][]ErrorRecord, len(Stages)),
		StageStatus: make(map[Stage]StageStatus, len(Stages)),
	}

	if raw := payload["stage_errors"]; raw != nil {
		byStage, ok := raw.(map[string]any)
		if !ok {
			return nil, invalidField("stage_errors", "an object")
		}
		for _, stage := range Stages {
			errs, err := decodeErrorList(byStage[string(stage)], "stage_errors."+string(stage))
			if err != nil {
				return nil, err
			}
			result.StageErrors[stage] = errs
		}
	}

	if raw := payload["stage_status"]; raw != nil {
		byStage, ok := raw.(map[string]any)
		if !ok {
			return nil, invalidField("stage_status", "an object")
		}
		for _, stage := range Stages {
			rawStatus, ok := byStage[string(stage)]
			if !ok || rawStatus == nil {
				continue
			}
			field := "stage_status." + string(stage)
			obj, ok := rawStatus.(map[string]any)
			if !ok {
				return nil, invalidField(field, "an object")
			}
			valid, ok := obj["valid"].(bool)
			if !ok {
				return nil, invalidField(field+".valid", "a boolean")
			}
			status := StageStatus{Valid: valid}
			if msg, ok := obj["message"]; ok && msg != nil {
				if status.Message, err = toString(msg, field+".message"); err != nil {
					return nil, err
				}
			}
			result.StageStatus[stage] = status
		}
	}

	return canonicalize(result), nil
}

// canonicalize enforces the Result invariants in place and returns it
func canonicalize(r *Result) *Result {
	if r.Stats == nil {
		r.Stats = make(Stats, len(StatCategories))
	}
	known := make(Stats, len(StatCategories))
	for _, category := range StatCategories {
		known[category] = r.Stats[category]
	}
	r.Stats = known

	if r.Tokens == nil {
		r.Tokens = []Token{}
	}
	r.Stats[StatTotalTokens] = len(r.Tokens)

	if r.StageErrors == nil {
		r.StageErrors = make(map[Stage][]ErrorRecord, len(Stages))
	}
	if r.StageStatus == nil {
		r.StageStatus = make(map[Stage]StageStatus, len(Stages))
	}

	upstreamValid := true
	for _, stage := range Stages {
		errs := r.StageErrors[stage]
		if errs == nil {
			errs = []ErrorRecord{}
		}
		r.StageErrors[stage] = errs

		derived := upstreamValid && len(errs) == 0
		status, ok := r.StageStatus[stage]
		if !ok {
			status = StageStatus{Valid: derived}
		}
		if len(errs) > 0 {
			status.Valid = false
		}
		if status.Message == "" {
			status.Message = statusMessage(stage, status.Valid, len(errs))
		}
		r.StageStatus[stage] = status
		upstreamValid = derived
	}

	return r
}

func statusMessage(stage Stage, valid bool, count int) string {
	switch {
	case valid:
		return fmt.Sprintf("no %s errors found", stage)
	case count == 1:
		return fmt.Sprintf("1 %s error", stage)
	case count > 1:
		return fmt.Sprintf("%d %s errors", count, stage)
	default:
		return fmt.Sprintf("%s analysis blocked by earlier errors", stage)
	}
}

func decodeStats(raw any, field string) (Stats, error) {
	stats := make(Stats, len(StatCategories))
	if raw == nil {
		return stats, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, invalidField(field, "an object")
	}
	for _, category := range StatCategories {
		v, ok := obj[category]
		if !ok || v == nil {
			continue
		}
		n, err := toInt(v, field+"."+category)
		if err != nil {
			return nil, err
		}
		stats[category] = n
	}
	return stats, nil
}

func decodeTokens(raw any, field, defaultType string) ([]Token, error) {
	list, err := asList(raw, field)
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(list))
	for i, item := range list {
		tok, err := decodeToken(item, fmt.Sprintf("%s[%d]", field, i), defaultType)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func decodeToken(raw any, field, defaultType string) (Token, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Token{}, invalidField(field, "an object")
	}

	var tok Token
	rawValue, ok := lookupFolded(obj, "value")
	if !ok {
		return Token{}, missingField(field + ".value")
	}
	value, err := toString(rawValue, field+".value")
	if err != nil {
		return Token{}, err
	}
	tok.Value = value

	tok.Type = defaultType
	if rawType, ok := lookupFolded(obj, "type"); ok && rawType != nil {
		if tok.Type, err = toString(rawType, field+".type"); err != nil {
			return Token{}, err
		}
	}
	if tok.Type == "" {
		return Token{}, missingField(field + ".type")
	}

	if rawLine, ok := lookupFolded(obj, lineKeys...); ok && rawLine != nil {
		if tok.Line, err = toInt(rawLine, field+".line"); err != nil {
			return Token{}, err
		}
	}
	return tok, nil
}

func decodeErrorList(raw any, field string) ([]ErrorRecord, error) {
	if raw == nil {
		return []ErrorRecord{}, nil
	}
	list, err := asList(raw, field)
	if err != nil {
		return nil, err
	}
	errs := make([]ErrorRecord, 0, len(list))
	for i, item := range list {
		rec, err := decodeErrorRecord(item, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		errs = append(errs, rec)
	}
	return errs, nil
}

func decodeErrorRecord(raw any, field string) (ErrorRecord, error) {
	if msg, ok := raw.(string); ok {
		return ErrorRecord{Message: msg}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return ErrorRecord{}, invalidField(field, "an object")
	}

	var rec ErrorRecord
	rawMsg, ok := lookupFolded(obj, messageKeys...)
	if !ok {
		return ErrorRecord{}, missingField(field + ".message")
	}
	msg, err := toString(rawMsg, field+".message")
	if err != nil {
		return ErrorRecord{}, err
	}
	rec.Message = msg

	if rawLine, ok := lookupFolded(obj, lineKeys...); ok && rawLine != nil {
		if rec.Line, err = toInt(rawLine, field+".line"); err != nil {
			return ErrorRecord{}, err
		}
	}
	return rec, nil
}

func asList(raw any, field string) ([]any, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, invalidField(field, "an array")
	}
	return list, nil
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
