package api

// Campaign is a named outreach effort a chat session is scoped to.
type Campaign struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TargetRole  string `json:"target_role,omitempty"`
	Industry    string `json:"industry,omitempty"`
	UserID      int64  `json:"user_id"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateCampaignRequest is the body for POST /campaigns.
type CreateCampaignRequest struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TargetRole  string `json:"target_role"`
	Industry    string `json:"industry"`
}

// ChatTurnRequest is the body for POST /chat. CorrelationID ties the HTTP
// reply to the matching api_response event so a single logical reply is
// rendered once regardless of which channel delivers it first.
type ChatTurnRequest struct {
	UserID         int64  `json:"user_id"`
	ConversationID int64  `json:"conversation_id"`
	CampaignID     int64  `json:"campaign_id"`
	Message        string `json:"message"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}

// GenerateSequenceRequest is the body for POST /campaigns/{id}/sequence.
type GenerateSequenceRequest struct {
	CompanyValues       string `json:"company_values"`
	UniqueSellingPoints string `json:"unique_selling_points"`
}

// Conversation is a stored conversation returned by GET /conversations/{id}.
type Conversation struct {
	ID         int64  `json:"conversation_id"`
	UserID     int64  `json:"user_id"`
	CampaignID int64  `json:"campaign_id"`
	Messages   string `json:"messages"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// listCampaignsResponse is the body of GET /campaigns.
type listCampaignsResponse struct {
	Campaigns []Campaign `json:"campaigns"`
}

// createCampaignResponse is the body of POST /campaigns.
type createCampaignResponse struct {
	CampaignID int64 `json:"campaign_id"`
}
