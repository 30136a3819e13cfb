package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// HashSenha gera um hash Argon2id (os parâmetros ficam dentro do hash).
func HashSenha(senha string) (string, error) {
	return argon2id.CreateHash(senha, params)
}

// VerificarSenha compara a senha fornecida com o valor armazenado.
// O sistema de origem guardava a senha em texto puro; registros antigos
// continuam nesse formato, registros gravados com SENHA_HASH=argon2id
// carregam o prefixo padrão do hash. Os dois formatos são aceitos para
// que a migração não exija redefinição de senha.
func VerificarSenha(fornecida, armazenada string) bool {
	if strings.HasPrefix(armazenada, "$argon2id$") {
		ok, err := argon2id.ComparePasswordAndHash(fornecida, armazenada)
		return err == nil && ok
	}
	return subtle.ConstantTimeCompare([]byte(fornecida), []byte(armazenada)) == 1
}
