package types

// IngestResponse answers POST /api/upload_web_data.
type IngestResponse struct {
	Status    string `json:"status"`
	ID        uint   `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type TokenRequest struct {
	APIKey string `json:"api_key"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
