package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/configs"
	authModel "laboissim_backend/internals/features/users/auth/model"
	authRepo "laboissim_backend/internals/features/users/auth/repository"
	userModel "laboissim_backend/internals/features/users/user/model"
	userService "laboissim_backend/internals/features/users/user/service"
	helper "laboissim_backend/internals/helpers"
)

/* ==========================
   Const & helpers
========================== */

const (
	accessTTLDefault  = 24 * time.Hour
	refreshTTLDefault = 7 * 24 * time.Hour
)

var validate = validator.New()

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_SECRET is not set")
	}
	return secret, nil
}

func getRefreshSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTRefreshSecret)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET"))
	}
	if secret == "" {
		return "", fiber.NewError(fiber.StatusInternalServerError, "JWT_REFRESH_SECRET is not set")
	}
	return secret, nil
}

func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func computeRefreshHash(token, secret string) []byte {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(token))
	return m.Sum(nil)
}

/* ==========================
   REGISTER
========================== */

type registerInput struct {
	UserName  string `json:"user_name" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

func Register(db *gorm.DB, c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	input.UserName = strings.TrimSpace(input.UserName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Struct(&input); err != nil {
		return helper.ValidationError(c, err)
	}

	passwordHash, err := HashPassword(input.Password)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Password hashing failed")
	}

	user := userModel.UserModel{
		UserName:  input.UserName,
		Email:     input.Email,
		Password:  passwordHash,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsActive:  true,
	}
	if err := authRepo.CreateUser(db, &user); err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "duplicate key") || strings.Contains(low, "unique") {
			return helper.Error(c, fiber.StatusBadRequest, "Email or username already registered")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	// materialize the profile now so the first login does not race it
	profiles := userService.NewProfileService(db)
	if _, err := profiles.GetOrCreateProfile(c.Context(), user.ID); err != nil {
		log.Printf("[register] initial profile for %s: %v", user.ID, err)
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Registration successful", nil)
}

/* ==========================
   LOGIN (username/email + password)
========================== */

func Login(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid input format")
	}
	input.Identifier = strings.TrimSpace(input.Identifier)
	if input.Identifier == "" || input.Password == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Identifier and password are required")
	}

	userLight, err := authRepo.FindUserByEmailOrUsernameLight(db, input.Identifier)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid identifier or password")
	}
	if !userLight.IsActive {
		return helper.Error(c, fiber.StatusForbidden, "Account is deactivated, contact an administrator")
	}
	if err := CheckPasswordHash(userLight.Password, input.Password); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid identifier or password")
	}

	userFull, err := authRepo.FindUserByID(db, userLight.ID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load user")
	}

	return issueTokens(c, db, *userFull)
}

/* ==========================
   CHANGE PASSWORD
========================== */

type changePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword re-checks the current password, stores the new hash
// and kills every refresh token so other sessions must log in again.
func ChangePassword(db *gorm.DB, c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var input changePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	if err := CheckPasswordHash(user.Password, input.OldPassword); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Current password is incorrect")
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Password hashing failed")
	}
	if err := authRepo.UpdateUserPassword(db, userID, hash); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to update password")
	}
	if err := RevokeAllForUser(db, userID); err != nil {
		log.Printf("[change-password] revoke refresh tokens for %s: %v", userID, err)
	}

	return helper.Success(c, "Password changed", nil)
}

/* ==========================
   LOGIN GOOGLE
========================== */

func LoginGoogle(db *gorm.DB, c *fiber.Ctx) error {
	var input struct {
		IDToken string `json:"id_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(input.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid Google ID Token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(input.IDToken)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to decode ID Token")
	}
	email, name, googleID := claimSet.Email, claimSet.Name, claimSet.Sub

	user, err := authRepo.FindUserByGoogleID(db, googleID)
	if err != nil {
		// first Google sign-in: try to attach to an existing account by
		// email, otherwise create a fresh one
		if existing, lookupErr := authRepo.FindUserByEmail(db, email); lookupErr == nil {
			if err := db.Model(existing).Update("google_id", googleID).Error; err != nil {
				return helper.Error(c, fiber.StatusInternalServerError, "Failed to link Google account")
			}
			user = existing
		} else {
			newUser := userModel.UserModel{
				UserName: googleUserName(db, name, email),
				Email:    email,
				Password: generatedPassword(),
				GoogleID: &googleID,
				IsActive: true,
			}
			if err := authRepo.CreateUser(db, &newUser); err != nil {
				return helper.Error(c, fiber.StatusInternalServerError, "Failed to create Google user")
			}
			profiles := userService.NewProfileService(db)
			if _, err := profiles.GetOrCreateProfile(c.Context(), newUser.ID); err != nil {
				log.Printf("[google] initial profile for %s: %v", newUser.ID, err)
			}
			user = &newUser
		}
	}

	userFull, err := authRepo.FindUserByID(db, user.ID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to load user")
	}
	if !userFull.IsActive {
		return helper.Error(c, fiber.StatusForbidden, "Account is deactivated, contact an administrator")
	}

	return issueTokens(c, db, *userFull)
}

// googleUserName derives a unique username from the Google profile.
func googleUserName(db *gorm.DB, name, email string) string {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := db.Model(&userModel.UserModel{}).Where("user_name = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = base + "_" + uuid.NewString()[:8]
	}
	return base + "_" + uuid.NewString()[:8]
}

func generatedPassword() string {
	hash, _ := HashPassword(uuid.NewString() + uuid.NewString())
	return hash
}

/* ==========================
   ISSUE TOKENS + Response
========================== */

func buildRefreshClaims(userID uuid.UUID, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ": "refresh",
		"sub": userID.String(),
		"id":  userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(refreshTTLDefault).Unix(),
	}
}

func buildAccessClaims(user userModel.UserModel, role string, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"typ":          "access",
		"sub":          user.ID.String(),
		"id":           user.ID.String(),
		"user_name":    user.UserName,
		"full_name":    user.FullName(),
		"role":         role,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
		"iat":          now.Unix(),
		"exp":          now.Add(accessTTLDefault).Unix(),
	}
}

func issueTokens(c *fiber.Ctx, db *gorm.DB, user userModel.UserModel) error {
	jwtSecret, err := getJWTSecret()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	now := nowUTC()
	profiles := userService.NewProfileService(db)
	role := profiles.RoleOf(c.Context(), &user)

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildAccessClaims(user, role, now)).SignedString([]byte(jwtSecret))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to sign access token")
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, buildRefreshClaims(user.ID, now)).SignedString([]byte(refreshSecret))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to sign refresh token")
	}

	ua, ip := c.Get("User-Agent"), c.IP()
	if err := authRepo.CreateRefreshToken(db, &authModel.RefreshTokenModel{
		UserID:    user.ID,
		Token:     computeRefreshHash(refreshToken, refreshSecret),
		ExpiresAt: now.Add(refreshTTLDefault),
		UserAgent: strptr(ua),
		IP:        strptr(ip),
	}); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to persist refresh token")
	}

	setAuthCookies(c, accessToken, refreshToken, now)

	return helper.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"id":           user.ID,
			"user_name":    user.UserName,
			"email":        user.Email,
			"full_name":    user.FullName(),
			"role":         role,
			"is_staff":     user.IsStaff,
			"is_superuser": user.IsSuperuser,
		},
		"access_token": accessToken,
	})
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(accessTTLDefault),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  now.Add(refreshTTLDefault),
	})
}

/* ==========================
   LOGOUT
========================== */

func Logout(db *gorm.DB, c *fiber.Ctx) error {
	accessToken := helper.GetRawAccessToken(c)

	if accessToken != "" {
		if err := authRepo.BlacklistToken(db, accessToken, resolveBlacklistTTL(accessToken)); err != nil {
			log.Printf("[WARN] blacklist token: %v", err)
		}
	}

	if rt := helper.GetRefreshTokenFromCookie(c); rt != "" {
		if secret, err := getRefreshSecret(); err == nil {
			_ = authRepo.DeleteRefreshTokenByHash(db, computeRefreshHash(rt, secret))
		}
	}

	expired := nowUTC().Add(-time.Hour)
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			HTTPOnly: true,
			Secure:   true,
			SameSite: "None",
			Path:     "/",
			Expires:  expired,
			MaxAge:   -1,
		})
	}

	return helper.Success(c, "Logout successful", nil)
}

// resolveBlacklistTTL keeps the blacklist row alive until the token
// itself would have expired.
func resolveBlacklistTTL(accessToken string) time.Duration {
	ttl := 2 * time.Minute
	if v := os.Getenv("BLACKLIST_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	jwtSecret, err := getJWTSecret()
	if err != nil || accessToken == "" {
		return ttl
	}
	if tok, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}); err == nil {
		if claims, ok := tok.Claims.(jwt.MapClaims); ok && tok.Valid {
			if exp, ok := claims["exp"].(float64); ok {
				until := time.Until(time.Unix(int64(exp), 0))
				if until > 0 {
					return until + time.Minute
				}
				return time.Minute
			}
		}
	}
	return ttl
}
