package reply

import (
	"testing"
)

func TestNormalizePlainReply(t *testing.T) {
	raw := `{"response": {"message": "Hello! How can I help with your campaign?"}}`

	r, diags := Normalize([]byte(raw))

	if r.Message != "Hello! How can I help with your campaign?" {
		t.Errorf("Message = %q", r.Message)
	}
	if r.ActionTool != "" {
		t.Errorf("ActionTool = %q, want empty", r.ActionTool)
	}
	if r.SequenceUpdate != nil {
		t.Errorf("SequenceUpdate = %+v, want nil", r.SequenceUpdate)
	}
	if r.Malformed {
		t.Error("Malformed = true for well-formed reply")
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestNormalizeDoubleEncodedResponse(t *testing.T) {
	// The response field itself is a JSON-encoded string, and the sequence
	// metadata is interleaved with step keys inside output.
	raw := `{"response":"{\"message\":\"hi\",\"action_tool\":\"Generate_Outreach_Sequence\",\"output\":{\"step1\":{\"channel\":\"Email\"},\"sequence_id\":9}}"}`

	r, _ := Normalize([]byte(raw))

	if r.Message != "hi" {
		t.Errorf("Message = %q, want hi", r.Message)
	}
	if r.ActionTool != ActionGenerateSequence {
		t.Errorf("ActionTool = %q", r.ActionTool)
	}
	if r.SequenceUpdate == nil {
		t.Fatal("SequenceUpdate = nil, want sequence")
	}
	if len(r.SequenceUpdate.Steps) != 1 {
		t.Fatalf("Steps = %v, want exactly step1", r.SequenceUpdate.Steps)
	}
	if got := r.SequenceUpdate.Steps["step1"].Channel; got != "Email" {
		t.Errorf("step1.Channel = %q, want Email", got)
	}
	if r.SequenceUpdate.ID != 9 {
		t.Errorf("sequence ID = %d, want 9", r.SequenceUpdate.ID)
	}
	if _, present := r.SequenceUpdate.Steps["sequence_id"]; present {
		t.Error("metadata key sequence_id leaked into step set")
	}
}

func TestNormalizeDoubleEncodedOutput(t *testing.T) {
	raw := `{"response": {
		"message": "Here is your sequence",
		"action_tool": "Edit_Sequence",
		"sequence_id": 12,
		"campaign_id": 3,
		"output": "{\"step1\":{\"channel\":\"LinkedIn\",\"timing\":\"Day 1\",\"message_content\":\"Hi there\"},\"step2\":{\"channel\":\"Email\",\"subject_line\":\"Following up\"}}"
	}}`

	r, _ := Normalize([]byte(raw))

	if r.SequenceUpdate == nil {
		t.Fatal("SequenceUpdate = nil")
	}
	if len(r.SequenceUpdate.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(r.SequenceUpdate.Steps))
	}
	if got := r.SequenceUpdate.Steps["step2"].SubjectLine; got != "Following up" {
		t.Errorf("step2.SubjectLine = %q", got)
	}
	// Reply-level metadata wins over output-level.
	if r.SequenceUpdate.ID != 12 || r.SequenceUpdate.CampaignID != 3 {
		t.Errorf("metadata = (%d, %d), want (12, 3)", r.SequenceUpdate.ID, r.SequenceUpdate.CampaignID)
	}
}

func TestNormalizeNoStepShapedKeys(t *testing.T) {
	raw := `{"response": {
		"message": "done",
		"action_tool": "Generate_Outreach_Sequence",
		"output": {"note": "no steps"}
	}}`

	r, diags := Normalize([]byte(raw))

	if r.SequenceUpdate != nil {
		t.Errorf("SequenceUpdate = %+v, want nil for step-less payload", r.SequenceUpdate)
	}
	if len(diags) == 0 {
		t.Error("expected a diagnostic for step-less sequence payload")
	}
}

func TestNormalizeUnrecognizedActionTool(t *testing.T) {
	raw := `{"response": {
		"message": "searching candidates",
		"action_tool": "Search_Candidates",
		"output": {"step1": {"channel": "Email"}}
	}}`

	r, _ := Normalize([]byte(raw))

	if r.SequenceUpdate != nil {
		t.Error("unrecognized action tool must not produce a sequence update")
	}
	if r.ActionTool != "Search_Candidates" {
		t.Errorf("ActionTool = %q", r.ActionTool)
	}
}

func TestNormalizeMalformedEmbeddedJSON(t *testing.T) {
	raw := `{"response": "this is {not valid json"}`

	r, diags := Normalize([]byte(raw))

	// The raw string passes through unchanged as the message.
	if r.Message != "this is {not valid json" {
		t.Errorf("Message = %q", r.Message)
	}
	if !r.Malformed {
		t.Error("Malformed = false for undecodable embedded reply")
	}
	if len(diags) == 0 {
		t.Error("expected decode diagnostic")
	}
}

func TestNormalizeTotality(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`42`,
		`"just a string"`,
		`[1,2,3]`,
		`{}`,
		`{"response": null}`,
		`{"response": 7}`,
		`{"response": {"output": 99, "action_tool": "Edit_Sequence", "message": "m"}}`,
		`{"response": {"output": {"step1": "not an object"}, "action_tool": "Edit_Sequence"}}`,
		`not json at all`,
	}

	for _, in := range inputs {
		r, _ := Normalize([]byte(in))
		if r.Message == "" {
			t.Errorf("input %q produced empty message", in)
		}
	}
}

func TestNormalizeMissingMessageField(t *testing.T) {
	r, _ := Normalize([]byte(`{"response": {"action_tool": "Other"}}`))
	if r.Message != FallbackMessage {
		t.Errorf("Message = %q, want fallback", r.Message)
	}
}

func TestNormalizeDirectEventPayload(t *testing.T) {
	// api_response events deliver the reply object without a response wrapper.
	raw := `{"message": "streamed reply", "action_tool": ""}`

	r, _ := Normalize([]byte(raw))
	if r.Message != "streamed reply" {
		t.Errorf("Message = %q", r.Message)
	}
}

func TestNormalizeStepValueNotObject(t *testing.T) {
	raw := `{"response": {
		"message": "m",
		"action_tool": "Generate_Outreach_Sequence",
		"output": {"step1": "oops", "step2": {"channel": "Email"}}
	}}`

	r, diags := Normalize([]byte(raw))

	if r.SequenceUpdate == nil {
		t.Fatal("SequenceUpdate = nil, want step2 only")
	}
	if _, present := r.SequenceUpdate.Steps["step1"]; present {
		t.Error("non-object step1 should be excluded")
	}
	if len(r.SequenceUpdate.Steps) != 1 {
		t.Errorf("got %d steps, want 1", len(r.SequenceUpdate.Steps))
	}
	if len(diags) == 0 {
		t.Error("expected diagnostic for non-object step value")
	}
}
