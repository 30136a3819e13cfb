package util

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// ValidateEmail retorna erro para e-mails inválidos. Campo vazio é
// responsabilidade do chamador.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("e-mail inválido")
	}
	return nil
}

// ValidateNome exige nome completo (dois ou mais termos) sem dígitos.
func ValidateNome(nome string) error {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return errors.New("nome obrigatório")
	}
	for _, r := range nome {
		if unicode.IsDigit(r) {
			return errors.New("nome não pode conter números")
		}
	}
	if len(strings.Fields(nome)) < 2 {
		return errors.New("insira o nome completo")
	}
	return nil
}

// ValidateWhatsApp aceita números com 10 ou 11 dígitos após normalização.
func ValidateWhatsApp(raw string) error {
	digits := NormalizeCPF(raw)
	if n := len(digits); n < 10 || n > 11 {
		return errors.New("whatsapp inválido")
	}
	return nil
}

// ValidateSenha exige exatamente 6 dígitos numéricos.
func ValidateSenha(senha string) error {
	if len(senha) != 6 {
		return errors.New("a senha deve ter 6 dígitos")
	}
	for _, r := range senha {
		if r < '0' || r > '9' {
			return errors.New("a senha deve ter 6 dígitos")
		}
	}
	return nil
}

// ValidateDataNascimento aceita DD/MM/AAAA ou AAAA-MM-DD, ano a partir
// de 1920 e nunca no futuro.
func ValidateDataNascimento(raw string) error {
	raw = strings.TrimSpace(raw)
	dt, err := time.Parse("02/01/2006", raw)
	if err != nil {
		dt, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return errors.New("data de nascimento inválida")
	}
	if dt.Year() < 1920 || dt.After(time.Now()) {
		return errors.New("data de nascimento inválida")
	}
	return nil
}
