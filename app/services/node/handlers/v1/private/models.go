package private

// addPeerRequest names a node to add to the known peers.
type addPeerRequest struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

type addPeerResponse struct {
	Status string `json:"status"`
	Host   string `json:"host"`
}
