package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
	"github.com/kaumahan/harvest-market-api/internal/storage"
)

var (
	ErrEmailTaken             = errors.New("an account with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrSellerPendingApproval  = errors.New("seller account is pending admin approval")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrBusinessFieldsRequired = errors.New("business name and business permit are required for sellers")
	ErrInvalidCoordinates     = errors.New("invalid coordinates")
)

type AuthService struct {
	accounts  repository.AccountRepository
	store     storage.Storage
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthService(accounts repository.AccountRepository, store storage.Storage, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{accounts: accounts, store: store, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry}
}

// Register creates an account. Buyers come out approved immediately;
// sellers must attach business name and permit and stay unapproved until
// a staff member signs off. Nothing is persisted on validation failure.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest, permit *dto.FileUpload) (*dto.RegisterResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	account := &model.Account{
		Email:           req.Email,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		ShippingAddress: req.ShippingAddress,
		Role:            role,
		IsApproved:      role == model.RoleBuyer,
		IsActive:        true,
	}

	if role == model.RoleSeller {
		if req.BusinessName == "" || permit == nil {
			return nil, ErrBusinessFieldsRequired
		}
		if err := validateUpload(permit, permitExtensions); err != nil {
			return nil, err
		}
		account.BusinessName = &req.BusinessName

		lat, lng, err := parseCoordinates(req.Latitude, req.Longitude)
		if err != nil {
			return nil, err
		}
		account.Latitude = lat
		account.Longitude = lng

		key := uploadKey("business_permits", permit.Filename)
		if err := s.store.Save(ctx, key, permit.Reader, permit.Size, permit.ContentType); err != nil {
			return nil, fmt.Errorf("save business permit: %w", err)
		}
		account.BusinessPermitKey = &key
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = string(hashed)

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	message := "Your account was successfully created."
	if account.IsSeller() {
		message = "Your seller account is pending admin approval."
	}
	return &dto.RegisterResponse{Account: toAccountResponse(account), Message: message}, nil
}

// Login rejects unapproved sellers outright even with valid credentials:
// pending sellers cannot use the system at all.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil || !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if account.IsSeller() && !account.IsApproved {
		return nil, ErrSellerPendingApproval
	}

	token, err := s.generateToken(account)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, Account: toAccountResponse(account)}, nil
}

func (s *AuthService) generateToken(account *model.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      account.ID.String(),
		"role":     string(account.Role),
		"staff":    account.IsStaff,
		"approved": account.IsApproved,
		"exp":      time.Now().Add(s.jwtExpiry).Unix(),
		"iat":      time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func parseCoordinates(latStr, lngStr string) (*decimal.Decimal, *decimal.Decimal, error) {
	if latStr == "" && lngStr == "" {
		return nil, nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, nil, ErrInvalidCoordinates
	}
	lat, err := decimal.NewFromString(latStr)
	if err != nil {
		return nil, nil, ErrInvalidCoordinates
	}
	lng, err := decimal.NewFromString(lngStr)
	if err != nil {
		return nil, nil, ErrInvalidCoordinates
	}
	return &lat, &lng, nil
}

func toAccountResponse(account *model.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:           account.ID,
		Email:        account.Email,
		FullName:     account.FullName,
		PhoneNumber:  account.PhoneNumber,
		Address:      account.Address,
		Role:         account.Role,
		BusinessName: account.BusinessName,
		IsApproved:   account.IsApproved,
		IsStaff:      account.IsStaff,
		CreatedAt:    account.CreatedAt,
	}
}
