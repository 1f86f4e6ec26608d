package services

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/opechapo/kara-backend/internal/config"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	siwe "github.com/spruceid/siwe-go"
	"go.uber.org/zap"
)

type fakeUserStore struct {
	users map[string]*models.User // keyed by lowercase wallet
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) UpsertByWallet(_ context.Context, walletAddress, nonce string) (*models.User, error) {
	key := strings.ToLower(walletAddress)
	u, ok := f.users[key]
	if !ok {
		u = &models.User{ID: uuid.New(), WalletAddress: walletAddress}
		f.users[key] = u
	}
	n := nonce
	u.Nonce = &n
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetByWallet(_ context.Context, walletAddress string) (*models.User, error) {
	u, ok := f.users[strings.ToLower(walletAddress)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) ClearNonce(_ context.Context, id uuid.UUID) error {
	for _, u := range f.users {
		if u.ID == id {
			u.Nonce = nil
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, upd repositories.UserProfileUpdate) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			if upd.Email != nil {
				u.Email = upd.Email
			}
			if upd.AvatarURL != nil {
				u.AvatarURL = upd.AvatarURL
			}
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newUserFixture(domains []string) (*UserService, *fakeUserStore) {
	store := newFakeUserStore()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiration:      time.Hour,
		SIWEAllowedDomains: domains,
	}
	return NewUserService(store, &fakeAuditLog{}, cfg, zap.NewNop()), store
}

// signInMessage builds an EIP-4361 message for the key's address and
// signs it the way a wallet would (EIP-191 personal_sign, v = 27/28).
func signInMessage(t *testing.T, key *ecdsa.PrivateKey, domain, nonce string) (string, string) {
	t.Helper()
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()
	msg, err := siwe.InitMessage(domain, addr, "https://"+domain, nonce, map[string]interface{}{
		"statement": "Sign in to Kara.",
		"chainId":   1,
		"issuedAt":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	raw := msg.String()

	sig, err := crypto.Sign(accounts.TextHash([]byte(raw)), key)
	if err != nil {
		t.Fatal(err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return raw, hexutil.Encode(sig)
}

func TestConnectWallet(t *testing.T) {
	svc, _ := newUserFixture([]string{"kara.market"})
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := svc.IssueNonce(context.Background(), addr)
	if err != nil {
		t.Fatalf("issue nonce: %v", err)
	}

	raw, sig := signInMessage(t, key, "kara.market", nonce)
	user, token, err := svc.ConnectWallet(context.Background(), raw, sig)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if token == "" {
		t.Error("empty session token")
	}
	if user.WalletAddress != strings.ToLower(addr) {
		t.Errorf("stored wallet = %q, want lowercase %q", user.WalletAddress, strings.ToLower(addr))
	}
	if user.Nonce != nil {
		t.Error("nonce should be burned after login")
	}

	// The burned nonce cannot be replayed.
	if _, _, err := svc.ConnectWallet(context.Background(), raw, sig); !errors.Is(err, ErrBadRequest) {
		t.Errorf("replay err = %v, want bad request", err)
	}
}

func TestConnectWallet_WrongNonce(t *testing.T) {
	svc, _ := newUserFixture(nil)
	key, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	if _, err := svc.IssueNonce(context.Background(), addr); err != nil {
		t.Fatal(err)
	}

	raw, sig := signInMessage(t, key, "kara.market", siwe.GenerateNonce())
	if _, _, err := svc.ConnectWallet(context.Background(), raw, sig); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestConnectWallet_WrongSigner(t *testing.T) {
	svc, _ := newUserFixture(nil)
	key, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := svc.IssueNonce(context.Background(), addr)
	if err != nil {
		t.Fatal(err)
	}

	// Message names key's address but is signed by another key.
	msg, err := siwe.InitMessage("kara.market", addr, "https://kara.market", nonce, map[string]interface{}{
		"chainId":  1,
		"issuedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatal(err)
	}
	raw := msg.String()
	sig, err := crypto.Sign(accounts.TextHash([]byte(raw)), other)
	if err != nil {
		t.Fatal(err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	if _, _, err := svc.ConnectWallet(context.Background(), raw, hexutil.Encode(sig)); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestConnectWallet_DisallowedDomain(t *testing.T) {
	svc, _ := newUserFixture([]string{"kara.market"})
	key, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	nonce, err := svc.IssueNonce(context.Background(), addr)
	if err != nil {
		t.Fatal(err)
	}

	raw, sig := signInMessage(t, key, "evil.example", nonce)
	if _, _, err := svc.ConnectWallet(context.Background(), raw, sig); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestConnectWallet_NoNonceIssued(t *testing.T) {
	svc, _ := newUserFixture(nil)
	key, _ := crypto.GenerateKey()

	raw, sig := signInMessage(t, key, "kara.market", siwe.GenerateNonce())
	if _, _, err := svc.ConnectWallet(context.Background(), raw, sig); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestConnectWallet_GarbageMessage(t *testing.T) {
	svc, _ := newUserFixture(nil)
	if _, _, err := svc.ConnectWallet(context.Background(), "not a sign-in message", "0x00"); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
}

func TestIssueNonce_InvalidAddress(t *testing.T) {
	svc, _ := newUserFixture(nil)
	for _, addr := range []string{"", "nonsense", "0x1234"} {
		if _, err := svc.IssueNonce(context.Background(), addr); !errors.Is(err, ErrBadRequest) {
			t.Errorf("addr %q: err = %v, want bad request", addr, err)
		}
	}
}

func TestNormalizeWallet(t *testing.T) {
	got := normalizeWallet("0x8BA1F109551bD432803012645Ac136ddd64DBA72")
	want := "0x8ba1f109551bd432803012645ac136ddd64dba72"
	if got != want {
		t.Errorf("normalizeWallet = %q, want %q", got, want)
	}
}
