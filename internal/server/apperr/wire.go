package apperr

import (
	"encoding/json"
	"net/http"
)

// wireBody is the refusal shape the transport writes. It never discloses
// whether a resource exists.
type wireBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON classifies err and writes the refusal to w.
func WriteJSON(w http.ResponseWriter, err error) {
	e := Classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(wireBody{Error: e.Kind.String(), Message: e.Message})
}
