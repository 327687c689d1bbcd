package api

type Unit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
	Location string `json:"location,omitempty"`
	Status   string `json:"status"`
}

type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
