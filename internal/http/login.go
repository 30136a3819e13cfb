package http

import (
	"encoding/json"
	"mime"
	"net"
	"net/http"
	"strings"
)

type loginPayload struct {
	CPF   string `json:"cpf"`
	Senha string `json:"senha"`
}

// Login autentica o par CPF/senha. O IP do cliente alimenta o limitador
// de tentativas; CPF inexistente e senha errada respondem igual.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		WriteError(w, http.StatusBadRequest, "Content-Type deve ser application/json")
		return
	}

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Corpo da requisição JSON inválido.")
		return
	}

	user, token, err := h.autenticacao.Login(r.Context(), clientIP(r), payload.CPF, payload.Senha)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	body := map[string]any{"user": user, "message": "Login bem-sucedido!"}
	if token != "" {
		body["token"] = token
	}
	WriteOK(w, http.StatusOK, body)
}

// clientIP confia no RemoteAddr já resolvido pelo middleware RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
