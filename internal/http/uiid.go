package http

import "net/http"

// LookupUIID atende o leitor de cartões. A resposta é sempre 200 com
// found true/false; o hardware não trata nenhum outro formato.
func (h *Handler) LookupUIID(w http.ResponseWriter, r *http.Request) {
	res := h.cartoes.Lookup(r.Context(), r.URL.Query().Get("uuid"))
	if !res.Found {
		WriteOK(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{
		"found":     true,
		"bloqueado": res.Bloqueado,
		"nome":      res.Nome,
	})
}
