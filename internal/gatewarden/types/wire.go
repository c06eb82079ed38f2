package types

// Wire types for the device-facing validation endpoints and the
// authenticated issue endpoints.

type ValidateCodeRequest struct {
	Code      string `json:"code"`
	DeviceID  string `json:"deviceId"`
	Direction string `json:"direction"` // "in" | "out"
}

type ValidateQRRequest struct {
	QRContent string `json:"qrContent"`
	DeviceID  string `json:"deviceId"`
	Direction string `json:"direction"`
}

type ValidateWindowRequest struct {
	Code     string `json:"code"`
	DeviceID string `json:"deviceId"`
}

// ValidateResponse is the only shape a device receives for a semantically
// valid request, success or failure.
type ValidateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type IssuePasscodeRequest struct {
	OwnerID    string `json:"owner_id"`
	OwnerType  string `json:"owner_type"`
	UsageLimit *int   `json:"usage_limit,omitempty"`
	TTLMinutes *int   `json:"ttl_minutes,omitempty"`
}

type IssuePasscodeResponse struct {
	Code      string `json:"code"`
	OwnerID   string `json:"owner_id"`
	OwnerType string `json:"owner_type"`
	ExpiresAt string `json:"expires_at,omitempty"` // RFC 3339, empty = no expiry
}

type IssueQRRequest struct {
	OwnerID     string   `json:"owner_id"`
	OwnerType   string   `json:"owner_type"`
	Permissions []string `json:"permissions"`
	TTLMinutes  int      `json:"ttl_minutes"`
}

type IssueQRResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type RevokeResponse struct {
	Code    string `json:"code"`
	Revoked bool   `json:"revoked"`
}
