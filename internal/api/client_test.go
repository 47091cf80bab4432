package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helix-dev/helix/internal/reply"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestListCampaigns(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "1" {
			t.Errorf("user_id = %q, want 1", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"campaigns": []Campaign{
				{ID: 4, Name: "Fintech engineers", UserID: 1},
				{ID: 7, Name: "Staff SRE search", UserID: 1},
			},
		})
	})
	defer srv.Close()

	campaigns, err := client.ListCampaigns(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListCampaigns failed: %v", err)
	}
	if len(campaigns) != 2 {
		t.Fatalf("got %d campaigns, want 2", len(campaigns))
	}
	if campaigns[0].Name != "Fintech engineers" {
		t.Errorf("campaigns[0].Name = %q", campaigns[0].Name)
	}
}

func TestListCampaignsMissingField(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	campaigns, err := client.ListCampaigns(context.Background(), 1)
	if err != nil {
		t.Fatalf("missing campaigns field must not fail: %v", err)
	}
	if campaigns == nil || len(campaigns) != 0 {
		t.Errorf("got %v, want empty slice", campaigns)
	}
}

func TestCreateCampaign(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var req CreateCampaignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Name != "Q4 outreach" || req.UserID != 1 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]int64{"campaign_id": 42})
	})
	defer srv.Close()

	id, err := client.CreateCampaign(context.Background(), CreateCampaignRequest{
		UserID:     1,
		Name:       "Q4 outreach",
		TargetRole: "Backend Engineer",
		Industry:   "fintech",
	})
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	if id != 42 {
		t.Errorf("campaign id = %d, want 42", id)
	}
}

func TestCreateCampaignMissingID(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Missing required fields"}`))
	})
	defer srv.Close()

	_, err := client.CreateCampaign(context.Background(), CreateCampaignRequest{UserID: 1, Name: "x"})
	if err == nil {
		t.Fatal("expected error for body lacking campaign_id")
	}
	if !IsRemoteCallError(err) {
		t.Errorf("error type = %T, want *RemoteCallError", err)
	}
}

func TestCreateCampaignNon2xx(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Missing required fields"}`, http.StatusBadRequest)
	})
	defer srv.Close()

	_, err := client.CreateCampaign(context.Background(), CreateCampaignRequest{})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	var rce *RemoteCallError
	if !errors.As(err, &rce) {
		t.Fatalf("error type = %T", err)
	}
	if rce.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rce.Status)
	}
}

func TestSendChatTurnNormalizesReply(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var req ChatTurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "generate a sequence" || req.CampaignID != 42 {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"response": {
			"message": "Here you go",
			"action_tool": "Generate_Outreach_Sequence",
			"sequence_id": 5,
			"output": {"step1": {"channel": "Email", "timing": "Day 1"}}
		}, "conversation_id": 68}`))
	})
	defer srv.Close()

	r, diags, err := client.SendChatTurn(context.Background(), ChatTurnRequest{
		UserID:         1,
		ConversationID: 68,
		CampaignID:     42,
		Message:        "generate a sequence",
	})
	if err != nil {
		t.Fatalf("SendChatTurn failed: %v", err)
	}
	if r.Message != "Here you go" {
		t.Errorf("Message = %q", r.Message)
	}
	if r.SequenceUpdate == nil || r.SequenceUpdate.ID != 5 {
		t.Errorf("SequenceUpdate = %+v", r.SequenceUpdate)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestSendChatTurnServerError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	_, _, err := client.SendChatTurn(context.Background(), ChatTurnRequest{Message: "hi"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestSendChatTurnMalformedReplyDegrades(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "broken {json"}`))
	})
	defer srv.Close()

	r, diags, err := client.SendChatTurn(context.Background(), ChatTurnRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("malformed assistant payload must not fail the call: %v", err)
	}
	if !r.Malformed {
		t.Error("expected degraded reply")
	}
	if len(diags) == 0 {
		t.Error("expected diagnostics")
	}
	if r.Message != "broken {json" {
		t.Errorf("Message = %q, want raw passthrough", r.Message)
	}
}

func TestEditSequence(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sequences/9/edit" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"message": "updated", "action_tool": "Edit_Sequence", "output": {"step1": {"channel": "LinkedIn"}}}`))
	})
	defer srv.Close()

	r, _, err := client.EditSequence(context.Background(), 9, "make step1 LinkedIn")
	if err != nil {
		t.Fatalf("EditSequence failed: %v", err)
	}
	if r.ActionTool != reply.ActionEditSequence {
		t.Errorf("ActionTool = %q", r.ActionTool)
	}
	if r.SequenceUpdate == nil {
		t.Fatal("expected sequence update")
	}
}
