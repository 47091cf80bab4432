// Package reply normalizes raw assistant responses into a stable internal
// shape. The backend wraps assistant output in loosely-typed JSON that may be
// double-encoded, may interleave metadata with sequence steps, and may omit
// fields entirely; Normalize absorbs all of that and never fails.
package reply

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action tools recognized on assistant replies. Any other value (or none)
// means the reply carries no sequence update.
const (
	ActionGenerateSequence = "Generate_Outreach_Sequence"
	ActionEditSequence     = "Edit_Sequence"
)

// FallbackMessage is rendered when a reply carries no message text.
const FallbackMessage = "No output received"

// stepKeyPrefix identifies sequence step keys ("step1", "step2", ...).
// Keys without the prefix are metadata and are excluded from the step set.
const stepKeyPrefix = "step"

// SequenceStep is one outreach step of a generated sequence.
type SequenceStep struct {
	Channel        string `json:"channel,omitempty"`
	SubjectLine    string `json:"subject_line,omitempty"`
	Timing         string `json:"timing,omitempty"`
	MessageContent string `json:"message_content,omitempty"`
}

// Sequence is a generated or edited outreach sequence keyed by step name.
type Sequence struct {
	ID         int64                   `json:"sequence_id,omitempty"`
	CampaignID int64                   `json:"campaign_id,omitempty"`
	Steps      map[string]SequenceStep `json:"steps"`
}

// Reply is the normalized form of an assistant response.
// SequenceUpdate is nil when the reply carries no recognized sequence; the
// caller must then leave any previously displayed sequence untouched.
type Reply struct {
	Message        string
	ActionTool     string
	SequenceUpdate *Sequence

	// Malformed is true when the raw input could not be decoded as a
	// structured reply and a degraded result was produced instead.
	Malformed bool
}

// Diagnostic records a malformation absorbed during normalization. Callers
// log these; normalization itself performs no I/O.
type Diagnostic struct {
	Stage  string
	Detail string
}

func diag(stage, format string, args ...any) Diagnostic {
	return Diagnostic{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

// Normalize converts a raw chat-turn response body or api_response event
// payload into a Reply. It is total: every input, however malformed, maps to
// a defined Reply plus zero or more diagnostics. It never returns an error
// and never panics on untrusted input.
func Normalize(raw []byte) (Reply, []Diagnostic) {
	var diags []Diagnostic

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		// Not a JSON object. A bare JSON string is still a usable message.
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return normalizeEnvelope(s, diags)
		}
		diags = append(diags, diag("body", "undecodable response body: %v", err))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = FallbackMessage
		}
		return Reply{Message: msg, Malformed: true}, diags
	}

	// The chat endpoint wraps the assistant reply in a "response" field;
	// api_response events deliver the reply object directly.
	envelope, ok := body["response"]
	if !ok {
		envelope = body
	}
	return normalizeEnvelope(envelope, diags)
}

// normalizeEnvelope handles the reply object itself, which may arrive as a
// structured object or as a JSON-encoded string of one.
func normalizeEnvelope(envelope any, diags []Diagnostic) (Reply, []Diagnostic) {
	fields, diags, malformed := decodeObject(envelope, "response", diags)
	if fields == nil {
		// Decoding failed entirely; pass the raw string through unchanged.
		if s, ok := envelope.(string); ok && strings.TrimSpace(s) != "" {
			return Reply{Message: s, Malformed: true}, diags
		}
		return Reply{Message: FallbackMessage, Malformed: true}, diags
	}

	r := Reply{
		Message:    stringField(fields, "message"),
		ActionTool: stringField(fields, "action_tool"),
		Malformed:  malformed,
	}
	if r.Message == "" {
		r.Message = FallbackMessage
	}

	if r.ActionTool != ActionGenerateSequence && r.ActionTool != ActionEditSequence {
		return r, diags
	}

	seq, diags := extractSequence(fields, diags)
	r.SequenceUpdate = seq
	return r, diags
}

// decodeObject coerces a value into a JSON object, attempting exactly one
// decode if the value is a JSON-encoded string. Returns nil when no object
// shape could be recovered; malformed reports whether degradation occurred.
func decodeObject(v any, stage string, diags []Diagnostic) (map[string]any, []Diagnostic, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, diags, false
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			diags = append(diags, diag(stage, "embedded JSON decode failed: %v", err))
			return nil, diags, true
		}
		return decoded, diags, false
	default:
		diags = append(diags, diag(stage, "unexpected %T where object expected", v))
		return nil, diags, true
	}
}

// extractSequence pulls a sequence update out of the reply's "output" field.
// Metadata keys (sequence_id, campaign_id) are read both from inside the
// output object and from the reply level, with the reply level winning.
// Zero step-shaped keys means no sequence update, not an empty one.
func extractSequence(fields map[string]any, diags []Diagnostic) (*Sequence, []Diagnostic) {
	output, diags, _ := decodeObject(fields["output"], "output", diags)
	if output == nil {
		return nil, diags
	}

	steps := make(map[string]SequenceStep)
	for key, val := range output {
		if !strings.HasPrefix(key, stepKeyPrefix) {
			continue
		}
		obj, ok := val.(map[string]any)
		if !ok {
			diags = append(diags, diag("output", "step key %q has non-object value %T", key, val))
			continue
		}
		steps[key] = SequenceStep{
			Channel:        stringField(obj, "channel"),
			SubjectLine:    stringField(obj, "subject_line"),
			Timing:         stringField(obj, "timing"),
			MessageContent: stringField(obj, "message_content"),
		}
	}

	if len(steps) == 0 {
		diags = append(diags, diag("output", "no step-shaped keys in sequence payload"))
		return nil, diags
	}

	seq := &Sequence{Steps: steps}
	seq.ID = intField(output, "sequence_id")
	seq.CampaignID = intField(output, "campaign_id")
	if id := intField(fields, "sequence_id"); id != 0 {
		seq.ID = id
	}
	if id := intField(fields, "campaign_id"); id != 0 {
		seq.CampaignID = id
	}
	return seq, diags
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int64 {
	// encoding/json decodes numbers into float64.
	if f, ok := m[key].(float64); ok {
		return int64(f)
	}
	return 0
}
