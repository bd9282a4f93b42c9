package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"farmtoclick/internal/models"
	"farmtoclick/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidRole        = errors.New("invalid role")
)

// Claims are the fields carried in an issued token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Role      string `json:"role" validate:"omitempty,oneof=user farmer rider"`
	FarmName  string `json:"farm_name" validate:"omitempty,max=200"`
}

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	OverallLocation *string
	ShippingAddress *string
	FarmName        *string
	FarmPhone       *string
	FarmLocation    *string
	FarmDescription *string
	ProfilePicture  *string
	RemovePicture   bool
	CurrentPassword string
	NewPassword     string
}

// AuthService handles business logic for authentication and accounts.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// RegisterUser opens an account and signs the new user in.
func (s *AuthService) RegisterUser(in RegisterInput) (*models.User, string, error) {
	if existing, err := s.userRepo.GetByEmail(in.Email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, "", err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin {
		return nil, "", ErrInvalidRole
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      role,
		FarmName:  in.FarmName,
		// Farmers and riders wait for an admin.
		IsVerified: role == models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Lost a race with another registration for the same email.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// LoginUser checks the credentials and returns a signed token.
func (s *AuthService) LoginUser(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// EnsureAdmin creates the admin account if no user owns the email yet.
func (s *AuthService) EnsureAdmin(email, password string) error {
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{
		Email:      email,
		Password:   string(hashedPassword),
		FirstName:  "Admin",
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	if err := s.userRepo.Create(admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Created admin account %s", admin.Email)
	return nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims := &Claims{}
	claims.UserID, _ = mc["user_id"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.Role, _ = mc["role"].(string)
	if claims.UserID == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}
	return claims, nil
}

// GetProfile returns the user behind a token.
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile applies a partial update. A password change needs the
// current password.
func (s *AuthService) UpdateProfile(userID string, in ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.FirstName, in.FirstName)
	apply(&user.LastName, in.LastName)
	apply(&user.Phone, in.Phone)
	apply(&user.OverallLocation, in.OverallLocation)
	apply(&user.ShippingAddress, in.ShippingAddress)
	apply(&user.FarmName, in.FarmName)
	apply(&user.FarmPhone, in.FarmPhone)
	apply(&user.FarmLocation, in.FarmLocation)
	apply(&user.FarmDescription, in.FarmDescription)

	switch {
	case in.ProfilePicture != nil:
		user.ProfilePicture = in.ProfilePicture
	case in.RemovePicture:
		user.ProfilePicture = nil
	}

	if in.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return nil, ErrWrongPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ActiveRiders lists riders an admin has verified, the ones a farmer may
// assign.
func (s *AuthService) ActiveRiders() ([]models.User, error) {
	return s.userRepo.ListVerified(models.RoleRider)
}

// PendingVerifications lists farmers and riders awaiting approval.
func (s *AuthService) PendingVerifications() ([]models.User, error) {
	return s.userRepo.ListUnverified(models.RoleFarmer, models.RoleRider)
}

// VerifyUser marks an account verified.
func (s *AuthService) VerifyUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return user, nil
	}
	user.IsVerified = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
