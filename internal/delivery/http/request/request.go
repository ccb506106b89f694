package request

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	Domain string `json:"domain"`
	Debug  bool   `json:"debug,omitempty"`
}
