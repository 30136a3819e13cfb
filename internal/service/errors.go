package service

import "errors"

// Mensagens fixas exibidas ao usuário final; os textos de login são os
// mesmos do sistema de origem (CPF inexistente e senha errada dividem a
// mesma mensagem para não denunciar cadastros).
var (
	// ErrCPFJaCadastrado indica conflito na criação (409).
	ErrCPFJaCadastrado = errors.New("CPF já cadastrado.")
	// ErrCredencialNaoEncontrada indica CPF sem registro em operações de escrita (404).
	ErrCredencialNaoEncontrada = errors.New("Credencial não encontrada.")
	// ErrSuperadminProtegido protege registros de superadministrador (403).
	ErrSuperadminProtegido = errors.New("Operação não permitida para este perfil.")
	// ErrCredenciaisInvalidas cobre CPF inexistente e senha incorreta (401).
	ErrCredenciaisInvalidas = errors.New("CPF ou senha inválidos.")
	// ErrUsuarioBloqueado indica conta bloqueada no login (403).
	ErrUsuarioBloqueado = errors.New("Este usuário está bloqueado.")
	// ErrMuitasTentativas indica IP sob bloqueio do limitador (429).
	ErrMuitasTentativas = errors.New("Muitas tentativas de login. Tente novamente mais tarde.")
)

// ErroValidacao carrega a mensagem de entrada inválida exibida ao
// chamador (400).
type ErroValidacao struct {
	Msg string
}

func (e ErroValidacao) Error() string { return e.Msg }
