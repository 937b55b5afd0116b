package event

type Message struct {
	Formatted string        `json:"formatted"`
	Message   string        `json:"message,omitempty"`
	Params    []interface{} `json:"params,omitempty"`
}

type Request struct {
	URL     string      `json:"url"`
	Method  string      `json:"method,omitempty"`
	Query   interface{} `json:"query,omitempty"`
	Headers [][2]string `json:"headers,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Breadcrumb struct {
	Timestamp string                 `json:"timestamp"`
	Type      string                 `json:"type"`
	Category  string                 `json:"category,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Level     string                 `json:"level,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

type Breadcrumbs struct {
	Values []Breadcrumb `json:"values"`
}
