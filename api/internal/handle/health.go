package handle

import "net/http"

// Health reports the active provider and whether it can be called. It
// never contacts the provider.
func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                        "healthy",
		"provider":                      h.gw.Name(),
		"model":                         h.gw.Model(),
		h.gw.Name() + "_api_configured": h.gw.Configured(),
	})
}
