package handler

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every handler answers with.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return NewMessageResponse("", data)
}

// NewMessageResponse is a success with a human readable note, such as the
// confirmation shown after saving a form.
func NewMessageResponse(message string, data interface{}) *Response {
	return &Response{Status: StatusSuccess, Message: message, Data: data}
}
