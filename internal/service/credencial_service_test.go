package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aruanda/portaria/internal/kv"
	"github.com/aruanda/portaria/internal/repo"
	"github.com/aruanda/portaria/internal/util"
)

func str(s string) *string { return &s }

func lista(v ...string) *[]string { return &v }

type ambiente struct {
	svc         *CredencialService
	credStore   *kv.MemoryStore
	cartaoStore *kv.MemoryStore
	creds       *repo.CredencialRepository
	cartoes     *repo.CartaoRepository
}

func novoAmbiente() *ambiente {
	credStore := kv.NewMemoryStore()
	cartaoStore := kv.NewMemoryStore()
	creds := repo.NewCredencialRepository(credStore)
	cartoes := repo.NewCartaoRepository(cartaoStore)
	return &ambiente{
		svc:         NewCredencialService(creds, cartoes, false),
		credStore:   credStore,
		cartaoStore: cartaoStore,
		creds:       creds,
		cartoes:     cartoes,
	}
}

func entradaValida() CredencialInput {
	return CredencialInput{
		Nome:      str("Maria Silva"),
		CPF:       str("111.444.777-35"),
		Senha:     str("123456"),
		Funcao:    str(repo.FuncaoUsuario),
		Permissao: lista("Editar", "Criar", "Criar", "Inexistente"),
		Acessos:   lista("piscina", "garagem"),
		Tag:       str("10:30.27.08.2026.12345678"),
	}
}

func TestCreateNormalizaEHidrata(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	view, err := amb.svc.Create(ctx, entradaValida())
	if err != nil {
		t.Fatal(err)
	}

	if view.CPF != "11144477735" {
		t.Errorf("cpf = %q, esperava normalizado", view.CPF)
	}
	if len(view.Permissao) != 2 || view.Permissao[0] != "Criar" || view.Permissao[1] != "Editar" {
		t.Errorf("permissao = %v, esperava [Criar Editar] canônico", view.Permissao)
	}
	if !view.Criar || !view.Editar || view.Apagar || view.Segregar {
		t.Errorf("booleanos derivados errados: %+v", view)
	}
	if view.Bloqueado != repo.BloqueadoNao {
		t.Errorf("bloqueado = %q, esperava nao", view.Bloqueado)
	}
	if !util.IsUUIDv4(view.UIID) {
		t.Errorf("uiid = %q, esperava UUID v4", view.UIID)
	}
	if len(view.Acessos) != 2 {
		t.Errorf("acessos = %v, esperava hidratado do cartão", view.Acessos)
	}

	// o cartão pareado existe e espelha os campos da credencial
	cartao, err := amb.cartoes.Get(ctx, view.UIID)
	if err != nil {
		t.Fatal(err)
	}
	if cartao.CPF != "11144477735" || cartao.Nome != "Maria Silva" || cartao.Bloqueado != repo.BloqueadoNao {
		t.Errorf("cartão não espelha a credencial: %+v", cartao)
	}

	// a senha não sai do serviço, mas fica persistida
	cred, err := amb.creds.Get(ctx, "11144477735")
	if err != nil {
		t.Fatal(err)
	}
	if cred.Senha != "123456" {
		t.Errorf("senha persistida = %q", cred.Senha)
	}
	if cred.UUID != view.UIID {
		t.Errorf("ponteiro direto = %q, esperava %q", cred.UUID, view.UIID)
	}
}

func TestCreateRejeicoes(t *testing.T) {
	ctx := context.Background()

	casos := []struct {
		nome    string
		mudar   func(*CredencialInput)
		querVal bool
	}{
		{"cpf com checksum errado", func(in *CredencialInput) { in.CPF = str("11144477736") }, true},
		{"cpf repetido", func(in *CredencialInput) { in.CPF = str("11111111111") }, true},
		{"nome com um termo", func(in *CredencialInput) { in.Nome = str("Maria") }, true},
		{"nome com dígito", func(in *CredencialInput) { in.Nome = str("Maria 2 Silva") }, true},
		{"senha curta", func(in *CredencialInput) { in.Senha = str("123") }, true},
		{"funcao desconhecida", func(in *CredencialInput) { in.Funcao = str("sindico") }, true},
		{"email inválido", func(in *CredencialInput) { in.Email = str("maria@") }, true},
		{"whatsapp curto", func(in *CredencialInput) { in.WhatsApp = str("12345") }, true},
		{"sem senha", func(in *CredencialInput) { in.Senha = nil }, true},
	}

	for _, caso := range casos {
		amb := novoAmbiente()
		in := entradaValida()
		caso.mudar(&in)
		_, err := amb.svc.Create(ctx, in)
		var ev ErroValidacao
		if caso.querVal && !errors.As(err, &ev) {
			t.Errorf("%s: err = %v, esperava ErroValidacao", caso.nome, err)
		}
	}
}

func TestCreateSuperadminRejeitado(t *testing.T) {
	amb := novoAmbiente()
	in := entradaValida()
	in.Funcao = str(repo.FuncaoSuperAdmin)

	if _, err := amb.svc.Create(context.Background(), in); !errors.Is(err, ErrSuperadminProtegido) {
		t.Fatalf("err = %v, esperava ErrSuperadminProtegido", err)
	}
}

func TestCreateCPFDuplicado(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}
	if _, err := amb.svc.Create(ctx, entradaValida()); !errors.Is(err, ErrCPFJaCadastrado) {
		t.Fatalf("err = %v, esperava ErrCPFJaCadastrado", err)
	}
}

func TestCreateAdotaUUIDFornecido(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	fornecido := "9f2b4c1e-7d3a-4c5b-8e6f-0a1b2c3d4e5f"
	in := entradaValida()
	in.UUID = str(fornecido)

	view, err := amb.svc.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if view.UIID != fornecido {
		t.Errorf("uiid = %q, esperava o UUID fornecido", view.UIID)
	}

	// identificador malformado é descartado em favor de um novo
	amb2 := novoAmbiente()
	in2 := entradaValida()
	in2.UUID = str("não-é-uuid")
	view2, err := amb2.svc.Create(ctx, in2)
	if err != nil {
		t.Fatal(err)
	}
	if view2.UIID == "não-é-uuid" || !util.IsUUIDv4(view2.UIID) {
		t.Errorf("uiid = %q, esperava UUID gerado", view2.UIID)
	}
}

func TestCreateDegradadoSemLojaDeCartoes(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()
	amb.cartaoStore.Fail(errors.New("kv fora do ar"))

	view, err := amb.svc.Create(ctx, entradaValida())
	if err != nil {
		t.Fatalf("criação degradada deveria passar: %v", err)
	}
	if view.UIID != "" {
		t.Errorf("uiid = %q, esperava vazio no modo degradado", view.UIID)
	}

	cred, err := amb.creds.Get(ctx, "11144477735")
	if err != nil {
		t.Fatal(err)
	}
	if cred.UUID != "" {
		t.Errorf("credencial degradada guardou uuid %q", cred.UUID)
	}
}

func TestListExcluiSuperadminEHidrata(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}
	// superadmin semeado direto na loja, como num provisionamento manual
	err := amb.creds.Put(ctx, repo.Credencial{
		CPF: "52998224725", Nome: "Super Admin", Senha: "999999",
		Funcao: repo.FuncaoSuperAdmin, Bloqueado: repo.BloqueadoNao,
	})
	if err != nil {
		t.Fatal(err)
	}

	views, err := amb.svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 1 {
		t.Fatalf("list devolveu %d usuários, esperava 1 (superadmin oculto)", len(views))
	}
	if views[0].CPF != "11144477735" || views[0].Tag == "" || len(views[0].Acessos) != 2 {
		t.Errorf("usuário listado sem hidratação: %+v", views[0])
	}
}

func TestUpdateEspelhaNoCartao(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	criado, err := amb.svc.Create(ctx, entradaValida())
	if err != nil {
		t.Fatal(err)
	}

	view, err := amb.svc.Update(ctx, "111.444.777-35", CredencialInput{
		Nome:      str("Maria Souza Silva"),
		Funcao:    str(repo.FuncaoFuncionario),
		Bloqueado: str(repo.BloqueadoSim),
		Acessos:   lista("academia"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.UIID != criado.UIID {
		t.Errorf("uiid mudou na edição: %q -> %q", criado.UIID, view.UIID)
	}

	cartao, err := amb.cartoes.Get(ctx, criado.UIID)
	if err != nil {
		t.Fatal(err)
	}
	if cartao.Nome != "Maria Souza Silva" || cartao.Funcao != repo.FuncaoFuncionario || cartao.Bloqueado != repo.BloqueadoSim {
		t.Errorf("espelho não aplicado: %+v", cartao)
	}
	if len(cartao.Acessos) != 1 || cartao.Acessos[0] != "academia" {
		t.Errorf("acessos = %v, esperava [academia]", cartao.Acessos)
	}
	// tag não enviada é preservada
	if cartao.Tag != "10:30.27.08.2026.12345678" {
		t.Errorf("tag = %q, deveria ter sido preservada", cartao.Tag)
	}
}

func TestUpdateIdempotente(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	criado, err := amb.svc.Create(ctx, entradaValida())
	if err != nil {
		t.Fatal(err)
	}
	antes, err := amb.cartoes.Get(ctx, criado.UIID)
	if err != nil {
		t.Fatal(err)
	}

	// reenviar os mesmos nome e função não pode alterar o espelho
	_, err = amb.svc.Update(ctx, criado.CPF, CredencialInput{
		Nome:   str("Maria Silva"),
		Funcao: str(repo.FuncaoUsuario),
	})
	if err != nil {
		t.Fatal(err)
	}

	depois, err := amb.cartoes.Get(ctx, criado.UIID)
	if err != nil {
		t.Fatal(err)
	}
	if depois.Nome != antes.Nome || depois.Funcao != antes.Funcao ||
		depois.Bloqueado != antes.Bloqueado || depois.Tag != antes.Tag ||
		len(depois.Acessos) != len(antes.Acessos) {
		t.Errorf("espelho mudou sem alteração: antes %+v, depois %+v", antes, depois)
	}
}

func TestUpdatePreservaSenhaEValores(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}

	vazia := ""
	if _, err := amb.svc.Update(ctx, "11144477735", CredencialInput{Senha: &vazia}); err != nil {
		t.Fatal(err)
	}

	cred, err := amb.creds.Get(ctx, "11144477735")
	if err != nil {
		t.Fatal(err)
	}
	if cred.Senha != "123456" {
		t.Errorf("senha = %q, deveria ter sido preservada", cred.Senha)
	}
}

func TestUpdateCPFDoPathManda(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}

	// corpo tenta trocar o CPF; o path é soberano e o CPF é imutável
	view, err := amb.svc.Update(ctx, "11144477735", CredencialInput{
		CPF:  str("52998224725"),
		Nome: str("Maria Souza"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.CPF != "11144477735" {
		t.Errorf("cpf = %q, a edição trocou a chave", view.CPF)
	}
	if _, err := amb.creds.Get(ctx, "52998224725"); !errors.Is(err, repo.ErrNotFound) {
		t.Error("registro fantasma criado com o CPF do corpo")
	}
}

func TestUpdateReparaPonteiroDefasado(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	criado, err := amb.svc.Create(ctx, entradaValida())
	if err != nil {
		t.Fatal(err)
	}

	// simula drift: o cartão foi reemitido fora do painel com outra chave
	cartao, err := amb.cartoes.Get(ctx, criado.UIID)
	if err != nil {
		t.Fatal(err)
	}
	novoID := util.NewCardUUID()
	if err := amb.cartoes.Put(ctx, novoID, cartao); err != nil {
		t.Fatal(err)
	}
	if err := amb.cartoes.Delete(ctx, criado.UIID); err != nil {
		t.Fatal(err)
	}

	view, err := amb.svc.Update(ctx, criado.CPF, CredencialInput{Nome: str("Maria Souza")})
	if err != nil {
		t.Fatal(err)
	}
	if view.UIID != novoID {
		t.Errorf("uiid = %q, a varredura reversa deveria achar %q", view.UIID, novoID)
	}

	espelhado, err := amb.cartoes.Get(ctx, novoID)
	if err != nil {
		t.Fatal(err)
	}
	if espelhado.Nome != "Maria Souza" {
		t.Errorf("espelho não alcançou o cartão reemitido: %+v", espelhado)
	}
}

func TestUpdateSemCartaoPareado(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()
	amb.cartaoStore.Fail(errors.New("kv fora do ar"))

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}
	amb.cartaoStore.Fail(nil)

	// sem cartão pareado o espelho é pulado em silêncio
	view, err := amb.svc.Update(ctx, "11144477735", CredencialInput{Nome: str("Maria Souza")})
	if err != nil {
		t.Fatalf("update sem cartão deveria passar: %v", err)
	}
	if view.Nome != "Maria Souza" || view.UIID != "" {
		t.Errorf("view inesperada: %+v", view)
	}
}

func TestUpdateRejeicoes(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	if _, err := amb.svc.Update(ctx, "11144477735", CredencialInput{}); !errors.Is(err, ErrCredencialNaoEncontrada) {
		t.Errorf("cpf inexistente: err = %v", err)
	}

	err := amb.creds.Put(ctx, repo.Credencial{
		CPF: "52998224725", Nome: "Super Admin", Senha: "999999",
		Funcao: repo.FuncaoSuperAdmin, Bloqueado: repo.BloqueadoNao,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := amb.svc.Update(ctx, "52998224725", CredencialInput{Nome: str("Outro Nome")}); !errors.Is(err, ErrSuperadminProtegido) {
		t.Errorf("superadmin editável: err = %v", err)
	}

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}
	if _, err := amb.svc.Update(ctx, "11144477735", CredencialInput{Funcao: str(repo.FuncaoSuperAdmin)}); !errors.Is(err, ErrSuperadminProtegido) {
		t.Errorf("promoção a superadmin aceita: err = %v", err)
	}
}

func TestDeleteRemoveCredencialECartao(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	criado, err := amb.svc.Create(ctx, entradaValida())
	if err != nil {
		t.Fatal(err)
	}

	if err := amb.svc.Delete(ctx, "111.444.777-35"); err != nil {
		t.Fatal(err)
	}

	if _, err := amb.creds.Get(ctx, "11144477735"); !errors.Is(err, repo.ErrNotFound) {
		t.Error("credencial sobreviveu ao delete")
	}
	if _, err := amb.cartoes.Get(ctx, criado.UIID); !errors.Is(err, repo.ErrNotFound) {
		t.Error("cartão pareado sobreviveu ao delete")
	}

	if err := amb.svc.Delete(ctx, "11144477735"); !errors.Is(err, ErrCredencialNaoEncontrada) {
		t.Errorf("segundo delete: err = %v", err)
	}
}

func TestDeleteEngoleFalhaDoCartao(t *testing.T) {
	ctx := context.Background()
	amb := novoAmbiente()

	if _, err := amb.svc.Create(ctx, entradaValida()); err != nil {
		t.Fatal(err)
	}
	amb.cartaoStore.Fail(errors.New("kv fora do ar"))

	if err := amb.svc.Delete(ctx, "11144477735"); err != nil {
		t.Fatalf("falha no cartão não pode bloquear o delete: %v", err)
	}
	if _, err := amb.creds.Get(ctx, "11144477735"); !errors.Is(err, repo.ErrNotFound) {
		t.Error("credencial sobreviveu ao delete")
	}
}
