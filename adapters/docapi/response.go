package docapi

import "io"

// Response is the transport-neutral response surface the controller writes to.
type Response interface {
	SetHeader(name, value string)
	DelHeader(name string)
	WriteHeader(status int)
	Write(p []byte) (int, error)
	WriteJSON(status int, payload any) error
	// Writer exposes the underlying stream when the transport supports
	// incremental writes. Transports that must buffer return false.
	Writer() (io.Writer, bool)
	Redirect(location string, status int) error
}

// AsyncResponse is returned for accepted asynchronous document requests.
type AsyncResponse struct {
	ID          string `json:"id"`
	StatusURL   string `json:"status_url"`
	DownloadURL string `json:"download_url"`
}

// ErrorResponse wraps an error payload.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error message and machine-readable code.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ThemesResponse lists the registered document themes.
type ThemesResponse struct {
	Themes []string `json:"themes"`
}
