package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aruanda/portaria/internal/auth"
	"github.com/aruanda/portaria/internal/kv"
	"github.com/aruanda/portaria/internal/repo"
)

type loginAmbiente struct {
	*ambiente
	limiterStore *kv.MemoryStore
	auth         *AuthService
}

func novoLoginAmbiente(t *testing.T, jwtMgr *auth.JWTManager) *loginAmbiente {
	t.Helper()

	amb := novoAmbiente()
	limiterStore := kv.NewMemoryStore()
	limiter := NewLoginLimiter(limiterStore, 5, 15*time.Minute, 30*time.Minute)

	if _, err := amb.svc.Create(context.Background(), entradaValida()); err != nil {
		t.Fatal(err)
	}

	return &loginAmbiente{
		ambiente:     amb,
		limiterStore: limiterStore,
		auth:         NewAuthService(amb.creds, amb.svc, limiter, jwtMgr),
	}
}

func TestLoginSucesso(t *testing.T) {
	ctx := context.Background()
	amb := novoLoginAmbiente(t, nil)

	view, token, err := amb.auth.Login(ctx, "203.0.113.7", "111.444.777-35", "123456")
	if err != nil {
		t.Fatal(err)
	}
	if view.CPF != "11144477735" || view.Bloqueado != repo.BloqueadoNao {
		t.Errorf("view = %+v", view)
	}
	if view.UIID == "" || view.Tag == "" {
		t.Errorf("view sem hidratação do cartão: %+v", view)
	}
	if token != "" {
		t.Errorf("token = %q, esperava vazio sem gerenciador JWT", token)
	}

	// login bem-sucedido não deixa rastro no limitador
	if _, err := amb.limiterStore.Get(ctx, "ip:203.0.113.7"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("limitador registrou sucesso: err = %v", err)
	}
}

func TestLoginEmiteTokenQuandoConfigurado(t *testing.T) {
	jwtMgr := auth.NewJWTManager("segredo-de-teste-com-mais-de-32-bytes!!", time.Hour)
	amb := novoLoginAmbiente(t, jwtMgr)

	_, token, err := amb.auth.Login(context.Background(), "203.0.113.7", "11144477735", "123456")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("token vazio com gerenciador configurado")
	}

	claims, err := jwtMgr.ParseAndValidate(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "11144477735" || claims.Funcao != repo.FuncaoUsuario {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginErroIdenticoParaSenhaECPF(t *testing.T) {
	ctx := context.Background()
	amb := novoLoginAmbiente(t, nil)

	_, _, errSenha := amb.auth.Login(ctx, "203.0.113.7", "11144477735", "654321")
	_, _, errCPF := amb.auth.Login(ctx, "203.0.113.7", "52998224725", "123456")

	if !errors.Is(errSenha, ErrCredenciaisInvalidas) || !errors.Is(errCPF, ErrCredenciaisInvalidas) {
		t.Fatalf("errSenha = %v, errCPF = %v", errSenha, errCPF)
	}
	// mesmo texto nos dois caminhos: nada pode revelar se o CPF existe
	if errSenha.Error() != errCPF.Error() {
		t.Errorf("mensagens divergem: %q vs %q", errSenha, errCPF)
	}
}

func TestLoginEntradaMalformadaPenalizada(t *testing.T) {
	ctx := context.Background()
	amb := novoLoginAmbiente(t, nil)

	_, _, err := amb.auth.Login(ctx, "203.0.113.7", "123", "123456")
	var ev ErroValidacao
	if !errors.As(err, &ev) {
		t.Fatalf("err = %v, esperava ErroValidacao", err)
	}

	// formato inválido também conta como tentativa
	if _, err := amb.limiterStore.Get(ctx, "ip:203.0.113.7"); err != nil {
		t.Errorf("tentativa malformada não penalizada: %v", err)
	}
}

func TestLoginBloqueadoNaoConta(t *testing.T) {
	ctx := context.Background()
	amb := novoLoginAmbiente(t, nil)

	sim := repo.BloqueadoSim
	if _, err := amb.svc.Update(ctx, "11144477735", CredencialInput{Bloqueado: &sim}); err != nil {
		t.Fatal(err)
	}

	_, _, err := amb.auth.Login(ctx, "203.0.113.7", "11144477735", "123456")
	if !errors.Is(err, ErrUsuarioBloqueado) {
		t.Fatalf("err = %v, esperava ErrUsuarioBloqueado", err)
	}

	// conta bloqueada não incrementa o limitador, mesmo com senha certa
	if _, err := amb.limiterStore.Get(ctx, "ip:203.0.113.7"); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("limitador registrou login de conta bloqueada: err = %v", err)
	}
}

func TestLoginLimiteDeTentativas(t *testing.T) {
	ctx := context.Background()
	amb := novoLoginAmbiente(t, nil)

	for i := 0; i < 5; i++ {
		if _, _, err := amb.auth.Login(ctx, "203.0.113.7", "11144477735", "000000"); !errors.Is(err, ErrCredenciaisInvalidas) {
			t.Fatalf("tentativa %d: err = %v", i+1, err)
		}
	}

	// a partir daqui nem a senha correta passa
	if _, _, err := amb.auth.Login(ctx, "203.0.113.7", "11144477735", "123456"); !errors.Is(err, ErrMuitasTentativas) {
		t.Fatalf("err = %v, esperava ErrMuitasTentativas", err)
	}

	// o bloqueio é por IP: outro endereço segue livre
	if _, _, err := amb.auth.Login(ctx, "198.51.100.9", "11144477735", "123456"); err != nil {
		t.Fatalf("outro IP bloqueado indevidamente: %v", err)
	}
}

func TestLoginLimitadorIndisponivelFalhaAberto(t *testing.T) {
	ctx := context.Background()
	amb := novoLoginAmbiente(t, nil)
	amb.limiterStore.Fail(errors.New("kv fora do ar"))

	if _, _, err := amb.auth.Login(ctx, "203.0.113.7", "11144477735", "123456"); err != nil {
		t.Fatalf("limitador fora do ar não pode derrubar o login: %v", err)
	}
}
