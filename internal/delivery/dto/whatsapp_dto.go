package dto

type WhatsAppStateResponse struct {
	Instance string `json:"instance"`
	State    string `json:"state"`
}

type WhatsAppQRCodeResponse struct {
	Instance    string `json:"instance"`
	PairingCode string `json:"pairing_code,omitempty"`
	Code        string `json:"code,omitempty"`
	Base64      string `json:"base64,omitempty"`
}
