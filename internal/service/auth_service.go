package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aruanda/portaria/internal/auth"
	"github.com/aruanda/portaria/internal/repo"
	"github.com/aruanda/portaria/internal/util"
)

// AuthService valida tentativas de login contra a loja de credenciais,
// consultando o limitador por IP antes de qualquer outra coisa.
type AuthService struct {
	creds   *repo.CredencialRepository
	credSvc *CredencialService
	limiter *LoginLimiter
	jwt     *auth.JWTManager
}

// NewAuthService cria o serviço; jwtMgr pode ser nil quando a emissão
// de token de sessão estiver desligada.
func NewAuthService(creds *repo.CredencialRepository, credSvc *CredencialService, limiter *LoginLimiter, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{creds: creds, credSvc: credSvc, limiter: limiter, jwt: jwtMgr}
}

// Login autentica o par CPF/senha vindo do IP informado. CPF
// inexistente e senha errada produzem o mesmo erro e ambos contam no
// limitador; conta bloqueada devolve erro próprio e não conta — essa
// assimetria vem do sistema de origem e é proposital. Entrada malformada
// também é penalizada, como no worker original.
func (s *AuthService) Login(ctx context.Context, ip, cpf, senha string) (CredencialView, string, error) {
	if s.limiter.Bloqueado(ctx, ip) {
		return CredencialView{}, "", ErrMuitasTentativas
	}

	cpf = util.NormalizeCPF(cpf)
	senha = util.NormalizeCPF(senha)

	if len(cpf) != 11 || len(senha) != 6 {
		s.limiter.RegistrarFalha(ctx, ip)
		return CredencialView{}, "", ErroValidacao{Msg: "Formato de CPF ou senha inválido."}
	}

	cred, err := s.creds.Get(ctx, cpf)
	if errors.Is(err, repo.ErrNotFound) {
		s.limiter.RegistrarFalha(ctx, ip)
		return CredencialView{}, "", ErrCredenciaisInvalidas
	}
	if err != nil {
		return CredencialView{}, "", err
	}

	if cred.Bloqueado != "" && strings.ToLower(cred.Bloqueado) != repo.BloqueadoNao {
		return CredencialView{}, "", ErrUsuarioBloqueado
	}

	if !auth.VerificarSenha(senha, cred.Senha) {
		s.limiter.RegistrarFalha(ctx, ip)
		return CredencialView{}, "", ErrCredenciaisInvalidas
	}

	view := s.credSvc.montarView(ctx, cred)

	token := ""
	if s.jwt != nil {
		token, err = s.jwt.GenerateAccessToken(cred.CPF, cred.Funcao, view.Permissao)
		if err != nil {
			return CredencialView{}, "", err
		}
	}
	return view, token, nil
}
