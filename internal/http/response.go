package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aruanda/portaria/internal/service"
)

// WriteOK escreve a resposta de sucesso no formato consumido pelo
// painel: {"ok":true, ...campos}.
func WriteOK(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError escreve {"error":"<mensagem>"} com o status indicado.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// WriteServiceError mapeia os erros dos serviços para a taxonomia HTTP.
// Falhas não classificadas são logadas e convertidas em mensagem
// genérica; detalhes internos nunca chegam ao cliente.
func WriteServiceError(w http.ResponseWriter, err error) {
	var ev service.ErroValidacao
	switch {
	case errors.As(err, &ev):
		WriteError(w, http.StatusBadRequest, ev.Msg)
	case errors.Is(err, service.ErrCredenciaisInvalidas):
		WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUsuarioBloqueado), errors.Is(err, service.ErrSuperadminProtegido):
		WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrCredencialNaoEncontrada):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCPFJaCadastrado):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMuitasTentativas):
		WriteError(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Error().Err(err).Msg("erro inesperado")
		WriteError(w, http.StatusInternalServerError, "Ocorreu um erro interno no servidor.")
	}
}
