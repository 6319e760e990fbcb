package functions

type analyzeRequest struct {
	Message string `json:"message" validate:"required"`
}

// CoachReplyRequest carries the condensed history and the new user
// message to the hosted coach.
type CoachReplyRequest struct {
	ConversationID string   `json:"conversation_id" validate:"required,uuid4"`
	Message        string   `json:"message" validate:"required"`
	History        []string `json:"history,omitempty"`
	Emotion        string   `json:"emotion,omitempty"`
	Depth          string   `json:"depth,omitempty"`
	Temperament    string   `json:"temperament,omitempty"`
}

// CoachReplyResponse is the coach function's reply.
type CoachReplyResponse struct {
	Reply       string   `json:"reply"`
	ProtocolIDs []string `json:"protocol_ids,omitempty"`
}

// TagSyncRequest pushes tag changes for one user to the CRM.
type TagSyncRequest struct {
	UserID string   `json:"user_id" validate:"required"`
	Add    []string `json:"add,omitempty"`
	Remove []string `json:"remove,omitempty"`
}

type tagSyncResponse struct {
	Synced bool `json:"synced"`
}

// BinderRequest asks for a season binder document.
type BinderRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	SeasonID string `json:"season_id" validate:"required,uuid4"`
}

// BinderResponse reports the rendered binder's storage location.
type BinderResponse struct {
	StorageKey  string `json:"storage_key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type embedRequest struct {
	Texts []string `json:"texts" validate:"required,min=1"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}
