package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aruanda/portaria/internal/auth"
	"github.com/aruanda/portaria/internal/repo"
	"github.com/aruanda/portaria/internal/util"
)

// CredencialInput transporta os campos aceitos na criação e na edição.
// Ponteiro nulo significa "não enviado": na edição o valor anterior é
// preservado, na criação os obrigatórios são exigidos.
type CredencialInput struct {
	Nome           *string
	Email          *string
	WhatsApp       *string
	DataNascimento *string
	CPF            *string
	Senha          *string
	Funcao         *string
	Permissao      *[]string
	Acessos        *[]string
	Tag            *string
	Bloqueado      *string
	UUID           *string
}

// CredencialView é a forma de apresentação de uma credencial: senha
// removida, permissões canônicas com os booleanos derivados e os campos
// do cartão pareado (acessos, tag, uiid) hidratados quando existirem.
type CredencialView struct {
	CPF            string   `json:"cpf"`
	Nome           string   `json:"nome"`
	Email          string   `json:"email,omitempty"`
	WhatsApp       string   `json:"whatsapp,omitempty"`
	DataNascimento string   `json:"dataNascimento,omitempty"`
	Funcao         string   `json:"funcao"`
	Permissao      []string `json:"permissao"`
	Criar          bool     `json:"criar"`
	Editar         bool     `json:"editar"`
	Apagar         bool     `json:"apagar"`
	Segregar       bool     `json:"segregar"`
	Bloqueado      string   `json:"bloqueado"`
	Acessos        []string `json:"acessos"`
	Tag            string   `json:"tag,omitempty"`
	UIID           string   `json:"uiid,omitempty"`
}

// CredencialService é o único ponto de escrita das duas lojas: mantém o
// espelho do cartão consistente com a credencial a cada mutação. Não há
// transação entre as lojas; o protocolo é cartão primeiro na criação e
// espelho best-effort nas demais escritas, com inconsistência breve
// tolerada por todos os caminhos de leitura.
type CredencialService struct {
	creds     *repo.CredencialRepository
	cartoes   *repo.CartaoRepository
	senhaHash bool
}

// NewCredencialService cria o serviço. senhaHash liga a gravação de
// senhas novas como Argon2id em vez de texto puro.
func NewCredencialService(creds *repo.CredencialRepository, cartoes *repo.CartaoRepository, senhaHash bool) *CredencialService {
	return &CredencialService{creds: creds, cartoes: cartoes, senhaHash: senhaHash}
}

// Create valida, grava o cartão e em seguida a credencial apontando
// para ele. Se a loja de cartões estiver indisponível a credencial é
// criada sem pareamento (modo degradado).
func (s *CredencialService) Create(ctx context.Context, in CredencialInput) (CredencialView, error) {
	if err := validarCampos(in, false); err != nil {
		return CredencialView{}, err
	}
	if in.Nome == nil || in.CPF == nil || in.Funcao == nil || in.Senha == nil {
		return CredencialView{}, ErroValidacao{Msg: "Campos obrigatórios: nome, cpf, funcao e senha."}
	}
	if *in.Funcao == repo.FuncaoSuperAdmin {
		return CredencialView{}, ErrSuperadminProtegido
	}

	cpf := util.NormalizeCPF(*in.CPF)

	if _, err := s.creds.Get(ctx, cpf); err == nil {
		return CredencialView{}, ErrCPFJaCadastrado
	} else if !errors.Is(err, repo.ErrNotFound) {
		return CredencialView{}, err
	}

	// aceita UUID fornecido pelo chamador quando for um v4 bem formado;
	// qualquer outra coisa é descartada em favor de um novo
	id := util.NewCardUUID()
	if in.UUID != nil && util.IsUUIDv4(strings.TrimSpace(*in.UUID)) {
		id = strings.ToLower(strings.TrimSpace(*in.UUID))
	}

	cartao := repo.Cartao{
		CPF:       cpf,
		Nome:      strings.TrimSpace(*in.Nome),
		Funcao:    *in.Funcao,
		Bloqueado: repo.BloqueadoNao,
		Acessos:   []string{},
	}
	if in.Bloqueado != nil {
		cartao.Bloqueado = *in.Bloqueado
	}
	if in.Acessos != nil {
		cartao.Acessos = *in.Acessos
	}
	if in.Tag != nil {
		cartao.Tag = *in.Tag
	}

	pareado := true
	if err := s.cartoes.Put(ctx, id, cartao); err != nil {
		log.Warn().Err(err).Str("cpf", cpf).Msg("loja de cartões indisponível; credencial sem pareamento")
		pareado = false
		id = ""
	}

	senha := *in.Senha
	if s.senhaHash {
		hashed, err := auth.HashSenha(senha)
		if err != nil {
			return CredencialView{}, err
		}
		senha = hashed
	}

	cred := repo.Credencial{
		CPF:       cpf,
		Nome:      strings.TrimSpace(*in.Nome),
		Senha:     senha,
		Funcao:    *in.Funcao,
		Permissao: []string{},
		Bloqueado: cartao.Bloqueado,
		UUID:      id,
	}
	if in.Email != nil {
		cred.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.WhatsApp != nil {
		cred.WhatsApp = util.NormalizeCPF(*in.WhatsApp)
	}
	if in.DataNascimento != nil {
		cred.DataNascimento = strings.TrimSpace(*in.DataNascimento)
	}
	if in.Permissao != nil {
		cred.Permissao = repo.NormalizarPermissoes(*in.Permissao)
	}

	if err := s.creds.Put(ctx, cred); err != nil {
		return CredencialView{}, err
	}

	view := baseView(cred)
	if pareado {
		view.UIID = id
		view.Acessos = cartao.Acessos
		view.Tag = cartao.Tag
	}
	return view, nil
}

// List devolve todas as credenciais exceto superadministradores, cada
// uma hidratada com o cartão pareado. Custo O(n·m) pela varredura por
// credencial; aceitável na escala de um condomínio.
func (s *CredencialService) List(ctx context.Context) ([]CredencialView, error) {
	creds, err := s.creds.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CredencialView, 0, len(creds))
	for _, cred := range creds {
		if cred.Funcao == repo.FuncaoSuperAdmin {
			continue
		}
		views = append(views, s.montarView(ctx, cred))
	}
	return views, nil
}

// Update aplica o patch sobre a credencial e espelha nome, função,
// bloqueio e (quando enviados) acessos e tag no cartão pareado. O CPF
// do path é soberano; CPF no corpo é ignorado. Cartão não localizado
// não é erro: o espelho é pulado e a inconsistência fica registrada.
func (s *CredencialService) Update(ctx context.Context, cpfPath string, in CredencialInput) (CredencialView, error) {
	cpf := util.NormalizeCPF(cpfPath)

	cred, err := s.creds.Get(ctx, cpf)
	if errors.Is(err, repo.ErrNotFound) {
		return CredencialView{}, ErrCredencialNaoEncontrada
	}
	if err != nil {
		return CredencialView{}, err
	}
	if cred.Funcao == repo.FuncaoSuperAdmin {
		return CredencialView{}, ErrSuperadminProtegido
	}

	if err := validarCampos(in, true); err != nil {
		return CredencialView{}, err
	}
	if in.Funcao != nil && *in.Funcao == repo.FuncaoSuperAdmin {
		return CredencialView{}, ErrSuperadminProtegido
	}

	if in.Nome != nil {
		cred.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.Email != nil {
		cred.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.WhatsApp != nil {
		cred.WhatsApp = util.NormalizeCPF(*in.WhatsApp)
	}
	if in.DataNascimento != nil {
		cred.DataNascimento = strings.TrimSpace(*in.DataNascimento)
	}
	if in.Funcao != nil {
		cred.Funcao = *in.Funcao
	}
	if in.Senha != nil && *in.Senha != "" {
		senha := *in.Senha
		if s.senhaHash {
			hashed, err := auth.HashSenha(senha)
			if err != nil {
				return CredencialView{}, err
			}
			senha = hashed
		}
		cred.Senha = senha
	}
	if in.Permissao != nil {
		cred.Permissao = repo.NormalizarPermissoes(*in.Permissao)
	}
	if in.Bloqueado != nil {
		cred.Bloqueado = *in.Bloqueado
	}
	if in.UUID != nil && util.IsUUIDv4(strings.TrimSpace(*in.UUID)) {
		cred.UUID = strings.ToLower(strings.TrimSpace(*in.UUID))
	}

	if err := s.creds.Put(ctx, cred); err != nil {
		return CredencialView{}, err
	}

	view := baseView(cred)
	id, cartao, ok := s.localizarCartao(ctx, cred)
	if ok {
		cartao.CPF = cred.CPF
		cartao.Nome = cred.Nome
		cartao.Funcao = cred.Funcao
		cartao.Bloqueado = cred.Bloqueado
		if in.Acessos != nil {
			cartao.Acessos = *in.Acessos
		}
		if in.Tag != nil {
			cartao.Tag = *in.Tag
		}
		if err := s.cartoes.Put(ctx, id, cartao); err != nil {
			log.Warn().Err(err).Str("cpf", cred.CPF).Str("cartao", id).Msg("falha ao espelhar cartão")
		} else {
			view.UIID = id
			view.Acessos = cartao.Acessos
			view.Tag = cartao.Tag
		}
	}
	return view, nil
}

// Delete remove a credencial e, best-effort, o cartão pareado. Falha ao
// remover o cartão é engolida: fica um cartão órfão, estado tolerado.
func (s *CredencialService) Delete(ctx context.Context, cpfPath string) error {
	cpf := util.NormalizeCPF(cpfPath)

	cred, err := s.creds.Get(ctx, cpf)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCredencialNaoEncontrada
	}
	if err != nil {
		return err
	}
	if cred.Funcao == repo.FuncaoSuperAdmin {
		return ErrSuperadminProtegido
	}

	id, _, ok := s.localizarCartao(ctx, cred)

	if err := s.creds.Delete(ctx, cpf); err != nil {
		return err
	}

	if ok {
		if err := s.cartoes.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("cpf", cpf).Str("cartao", id).Msg("cartão órfão: falha ao remover")
		}
	}
	return nil
}

// localizarCartao resolve o cartão da credencial: primeiro pelo
// ponteiro direto (uuid gravado), conferindo que o cpf do cartão ainda
// bate, e só então pela varredura reversa, que repara ponteiro defasado.
func (s *CredencialService) localizarCartao(ctx context.Context, cred repo.Credencial) (string, repo.Cartao, bool) {
	if cred.UUID != "" {
		cartao, err := s.cartoes.Get(ctx, cred.UUID)
		if err == nil && util.NormalizeCPF(cartao.CPF) == cred.CPF {
			return cred.UUID, cartao, true
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Str("cartao", cred.UUID).Msg("falha no ponteiro direto; varredura reversa")
		}
	}

	id, cartao, err := s.cartoes.FindByCPF(ctx, cred.CPF)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Str("cpf", cred.CPF).Msg("varredura reversa falhou")
		}
		return "", repo.Cartao{}, false
	}
	return id, cartao, true
}

// montarView hidrata a forma de apresentação com o cartão pareado.
// Credencial sem cartão é estado legal: os campos do cartão ficam vazios.
func (s *CredencialService) montarView(ctx context.Context, cred repo.Credencial) CredencialView {
	view := baseView(cred)
	if id, cartao, ok := s.localizarCartao(ctx, cred); ok {
		view.UIID = id
		view.Acessos = cartao.Acessos
		view.Tag = cartao.Tag
	}
	return view
}

func baseView(cred repo.Credencial) CredencialView {
	permissao := repo.NormalizarPermissoes(cred.Permissao)
	granted := make(map[string]bool, len(permissao))
	for _, p := range permissao {
		granted[p] = true
	}

	bloqueado := cred.Bloqueado
	if bloqueado == "" {
		bloqueado = repo.BloqueadoNao
	}

	return CredencialView{
		CPF:            cred.CPF,
		Nome:           cred.Nome,
		Email:          cred.Email,
		WhatsApp:       cred.WhatsApp,
		DataNascimento: cred.DataNascimento,
		Funcao:         cred.Funcao,
		Permissao:      permissao,
		Criar:          granted["Criar"],
		Editar:         granted["Editar"],
		Apagar:         granted["Apagar"],
		Segregar:       granted["Segregar"],
		Bloqueado:      bloqueado,
		Acessos:        []string{},
	}
}

// validarCampos aplica as regras comuns de criação e edição; na edição
// (patch=true) todos os campos são opcionais.
func validarCampos(in CredencialInput, patch bool) error {
	if in.Nome != nil {
		if err := util.ValidateNome(*in.Nome); err != nil {
			return ErroValidacao{Msg: "Insira o nome completo, sem números."}
		}
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		if err := util.ValidateEmail(*in.Email); err != nil {
			return ErroValidacao{Msg: "E-mail inválido."}
		}
	}
	if in.WhatsApp != nil && strings.TrimSpace(*in.WhatsApp) != "" {
		if err := util.ValidateWhatsApp(*in.WhatsApp); err != nil {
			return ErroValidacao{Msg: "Insira um WhatsApp válido."}
		}
	}
	if in.DataNascimento != nil && strings.TrimSpace(*in.DataNascimento) != "" {
		if err := util.ValidateDataNascimento(*in.DataNascimento); err != nil {
			return ErroValidacao{Msg: "Data de nascimento inválida."}
		}
	}
	if !patch && in.CPF != nil && !util.ValidateCPF(*in.CPF) {
		return ErroValidacao{Msg: "CPF inválido."}
	}
	if in.Senha != nil && (*in.Senha != "" || !patch) {
		if err := util.ValidateSenha(*in.Senha); err != nil {
			return ErroValidacao{Msg: "A senha deve ter 6 dígitos."}
		}
	}
	if in.Funcao != nil && !repo.FuncaoValida(*in.Funcao) {
		return ErroValidacao{Msg: "Função inválida."}
	}
	if in.Bloqueado != nil && *in.Bloqueado != repo.BloqueadoSim && *in.Bloqueado != repo.BloqueadoNao {
		return ErroValidacao{Msg: "Bloqueado deve ser 'sim' ou 'nao'."}
	}
	return nil
}
