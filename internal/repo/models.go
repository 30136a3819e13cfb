package repo

// Funções (papéis) reconhecidas pelo painel.
const (
	FuncaoUsuario     = "usuario"
	FuncaoFuncionario = "funcionario"
	FuncaoAdmin       = "administrador"
	FuncaoSuperAdmin  = "superadministrador"
)

// Estados do flag de bloqueio, espelhados no cartão.
const (
	BloqueadoSim = "sim"
	BloqueadoNao = "nao"
)

// TagCadastrado marca identidade pré-cadastrada fora do painel, com
// cartão físico já emitido.
const TagCadastrado = "cadastrado"

// PermissoesCanonicas define o conjunto e a ordem das capacidades de UI.
var PermissoesCanonicas = []string{"Criar", "Editar", "Apagar", "Segregar"}

// Credencial é o registro do morador na loja de credenciais, chaveado
// pelo CPF normalizado (11 dígitos).
type Credencial struct {
	CPF            string   `json:"cpf"`
	Nome           string   `json:"nome"`
	Email          string   `json:"email,omitempty"`
	WhatsApp       string   `json:"whatsapp,omitempty"`
	DataNascimento string   `json:"dataNascimento,omitempty"`
	Senha          string   `json:"senha,omitempty"`
	Funcao         string   `json:"funcao"`
	Permissao      []string `json:"permissao"`
	Bloqueado      string   `json:"bloqueado"`
	// UUID referencia o cartão pareado na loja de cartões. Pode estar
	// vazio (modo degradado) ou defasado; a localização do cartão em
	// escritas sempre reconfere pelo CPF.
	UUID string `json:"uuid,omitempty"`
}

// Cartao é o registro consultado pelo hardware de acesso, chaveado pelo
// UUID do cartão. Nome, função e bloqueio são um espelho da credencial,
// mantido a cada escrita; cpf é o único vínculo de volta.
type Cartao struct {
	CPF       string   `json:"cpf"`
	Nome      string   `json:"nome"`
	Funcao    string   `json:"funcao"`
	Bloqueado string   `json:"bloqueado"`
	Acessos   []string `json:"acessos"`
	Tag       string   `json:"tag,omitempty"`
}

// FuncaoValida confere o enum de papéis.
func FuncaoValida(funcao string) bool {
	switch funcao {
	case FuncaoUsuario, FuncaoFuncionario, FuncaoAdmin, FuncaoSuperAdmin:
		return true
	}
	return false
}

// NormalizarPermissoes filtra rótulos desconhecidos e devolve a lista
// deduplicada na ordem canônica.
func NormalizarPermissoes(raw []string) []string {
	granted := make(map[string]bool, len(raw))
	for _, p := range raw {
		granted[p] = true
	}
	out := make([]string, 0, len(PermissoesCanonicas))
	for _, p := range PermissoesCanonicas {
		if granted[p] {
			out = append(out, p)
		}
	}
	return out
}
