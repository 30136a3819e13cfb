package util

import "strings"

// NormalizeCPF remove tudo que não for dígito.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF aplica o algoritmo oficial dos dois dígitos verificadores
// (módulo 11 sobre somas ponderadas). Sequências com os 11 dígitos
// iguais passam na conta mas nunca são CPFs emitidos, então são
// rejeitadas antes.
func ValidateCPF(raw string) bool {
	cpf := NormalizeCPF(raw)
	if len(cpf) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	digit := func(i int) int { return int(cpf[i] - '0') }

	soma := 0
	for i := 0; i < 9; i++ {
		soma += digit(i) * (10 - i)
	}
	d1 := 11 - soma%11
	if d1 > 9 {
		d1 = 0
	}
	if d1 != digit(9) {
		return false
	}

	soma = 0
	for i := 0; i < 10; i++ {
		soma += digit(i) * (11 - i)
	}
	d2 := 11 - soma%11
	if d2 > 9 {
		d2 = 0
	}
	return d2 == digit(10)
}
