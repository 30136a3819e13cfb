package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aruanda/portaria/internal/service"
)

// credencialPayload aceita o corpo enviado pelo painel. Ponteiros
// distinguem campo ausente de campo vazio, o que importa no PUT.
type credencialPayload struct {
	Nome           *string   `json:"nome"`
	Email          *string   `json:"email"`
	WhatsApp       *string   `json:"whatsapp"`
	DataNascimento *string   `json:"dataNascimento"`
	CPF            *string   `json:"cpf"`
	Senha          *string   `json:"senha"`
	Funcao         *string   `json:"funcao"`
	Permissao      *[]string `json:"permissao"`
	Acessos        *[]string `json:"acessos"`
	Tag            *string   `json:"tag"`
	Bloqueado      *string   `json:"bloqueado"`
	UUID           *string   `json:"uuid"`
	// id é aceito como apelido de uuid: versões antigas do painel
	// enviavam o identificador nesse campo
	ID *string `json:"id"`
}

func (p credencialPayload) toInput() service.CredencialInput {
	in := service.CredencialInput{
		Nome:           p.Nome,
		Email:          p.Email,
		WhatsApp:       p.WhatsApp,
		DataNascimento: p.DataNascimento,
		CPF:            p.CPF,
		Senha:          p.Senha,
		Funcao:         p.Funcao,
		Permissao:      p.Permissao,
		Acessos:        p.Acessos,
		Tag:            p.Tag,
		Bloqueado:      p.Bloqueado,
		UUID:           p.UUID,
	}
	if in.UUID == nil {
		in.UUID = p.ID
	}
	return in
}

// ListCredentials devolve todas as credenciais visíveis ao painel.
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	users, err := h.credenciais.List(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"users": users})
}

// CreateCredential cadastra um morador e provisiona o cartão pareado.
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var payload credencialPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Corpo da requisição JSON inválido.")
		return
	}

	user, err := h.credenciais.Create(r.Context(), payload.toInput())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteOK(w, http.StatusCreated, map[string]any{"user": user})
}

// UpdateCredential aplica o patch no CPF do path; o corpo nunca troca o CPF.
func (h *Handler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	var payload credencialPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Corpo da requisição JSON inválido.")
		return
	}

	user, err := h.credenciais.Update(r.Context(), chi.URLParam(r, "cpf"), payload.toInput())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteOK(w, http.StatusOK, map[string]any{"user": user})
}

// DeleteCredential remove a credencial e o cartão pareado.
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.credenciais.Delete(r.Context(), chi.URLParam(r, "cpf")); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteOK(w, http.StatusOK, nil)
}
