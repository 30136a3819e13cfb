package util

import "github.com/google/uuid"

// NewCardUUID gera o identificador de um novo cartão (UUID v4).
func NewCardUUID() string {
	return uuid.NewString()
}

// IsUUIDv4 valida estritamente o formato 8-4-4-4-12 com nibble de
// versão 4 e variante RFC 4122. O leitor de cartões envia o valor cru,
// então formas alternativas (URN, chaves, sem hífen) não são aceitas.
func IsUUIDv4(raw string) bool {
	if len(raw) != 36 {
		return false
	}
	for i, r := range raw {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return false
			}
		default:
			if !isHex(r) {
				return false
			}
		}
	}
	if raw[14] != '4' {
		return false
	}
	switch raw[19] {
	case '8', '9', 'a', 'b', 'A', 'B':
	default:
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

func isHex(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
