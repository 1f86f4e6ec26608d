package services

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/opechapo/kara-backend/internal/auth"
	"github.com/opechapo/kara-backend/internal/config"
	"github.com/opechapo/kara-backend/internal/models"
	"github.com/opechapo/kara-backend/internal/repositories"
	siwe "github.com/spruceid/siwe-go"
	"go.uber.org/zap"
)

type userStore interface {
	UpsertByWallet(ctx context.Context, walletAddress, nonce string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	ClearNonce(ctx context.Context, id uuid.UUID) error
	UpdateProfile(ctx context.Context, id uuid.UUID, upd repositories.UserProfileUpdate) (*models.User, error)
}

type UserService struct {
	userRepo  userStore
	auditRepo auditLogger
	cfg       *config.Config
	log       *zap.Logger
}

func NewUserService(userRepo userStore, auditRepo auditLogger, cfg *config.Config, log *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, auditRepo: auditRepo, cfg: cfg, log: log}
}

// IssueNonce creates (or refreshes) the user for the wallet and returns a
// fresh sign-in nonce. Burned after one successful login.
func (s *UserService) IssueNonce(ctx context.Context, walletAddress string) (string, error) {
	if !common.IsHexAddress(walletAddress) {
		return "", badRequest("Invalid wallet address")
	}

	nonce := siwe.GenerateNonce()
	if _, err := s.userRepo.UpsertByWallet(ctx, normalizeWallet(walletAddress), nonce); err != nil {
		return "", err
	}
	return nonce, nil
}

// ConnectWallet verifies a signed EIP-4361 message and returns the user
// plus a session JWT.
func (s *UserService) ConnectWallet(ctx context.Context, rawMessage, signature string) (*models.User, string, error) {
	msg, err := siwe.ParseMessage(rawMessage)
	if err != nil {
		return nil, "", badRequest("Invalid sign-in message: " + err.Error())
	}
	wallet := msg.GetAddress().Hex()

	user, err := s.userRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, "", badRequest("No nonce issued for this wallet")
	}
	if user.Nonce == nil || *user.Nonce == "" {
		return nil, "", badRequest("No nonce issued for this wallet")
	}

	domain, err := s.allowedDomain(msg.GetDomain())
	if err != nil {
		return nil, "", err
	}
	if _, err := msg.Verify(signature, domain, user.Nonce, nil); err != nil {
		s.log.Info("wallet signature rejected",
			zap.String("wallet", wallet), zap.Error(err))
		return nil, "", badRequest("Signature verification failed: " + err.Error())
	}

	if err := s.userRepo.ClearNonce(ctx, user.ID); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, user.ID, user.WalletAddress, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", err
	}

	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &user.ID,
		ActorType:   "user",
		Action:      "wallet_connected",
		EntityType:  "user",
		EntityID:    &user.ID,
		Meta:        map[string]any{"wallet": user.WalletAddress},
	})

	return user, token, nil
}

// allowedDomain checks the message domain against the configured
// allowlist. An empty allowlist skips the check (nil tells Verify to do
// the same).
func (s *UserService) allowedDomain(domain string) (*string, error) {
	if len(s.cfg.SIWEAllowedDomains) == 0 {
		return nil, nil
	}
	for _, d := range s.cfg.SIWEAllowedDomains {
		if strings.EqualFold(d, domain) {
			return &d, nil
		}
	}
	return nil, badRequest("Sign-in domain is not allowed: " + domain)
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("User not found")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, email, avatarURL *string) (*models.User, error) {
	if email != nil && !strings.Contains(*email, "@") {
		return nil, badRequest("Invalid email address")
	}
	user, err := s.userRepo.UpdateProfile(ctx, userID, repositories.UserProfileUpdate{
		Email:     email,
		AvatarURL: avatarURL,
	})
	if err != nil {
		return nil, notFound("User not found")
	}
	return user, nil
}

// Logout is an audit-only endpoint: JWTs are stateless, the client
// simply drops the token.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID) {
	_ = s.auditRepo.Log(ctx, &models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "logout",
		EntityType:  "user",
		EntityID:    &userID,
	})
}

// Wallets are stored lowercase; comparisons elsewhere fold case too.
func normalizeWallet(addr string) string {
	return strings.ToLower(addr)
}
