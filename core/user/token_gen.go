package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	NowFunc = time.Now // mockable

	resetTokenSalt = "trainingmanagement.core.user.reset_token"
	dayEncoding    = base32.StdEncoding.WithPadding(base32.NoPadding)
	epoch          = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// resetTokens mints and checks stateless password reset tokens of the form "<issue day>-<signature>".
// The signature covers the user's ID, password hash and last update, so a token stops
// matching as soon as the password changes.
type resetTokens struct {
	key     []byte
	maxDays int
}

func newResetTokens(secretKey string, timeout time.Duration) resetTokens {
	key := sha256.Sum256([]byte(resetTokenSalt + secretKey))
	return resetTokens{key: key[:], maxDays: int(timeout / (24 * time.Hour))}
}

// ValidDays is how long a token stays valid, in days.
func (rt resetTokens) ValidDays() int { return rt.maxDays }

func (rt resetTokens) make(usr User) string {
	return rt.tokenAt(usr, dayNumber(NowFunc()))
}

func (rt resetTokens) check(usr User, token string) error {
	encDay, _, ok := strings.Cut(token, "-")
	if !ok || encDay == "" {
		return errInvalidToken
	}
	raw, err := dayEncoding.DecodeString(encDay)
	if err != nil {
		return errInvalidToken
	}
	day, err := strconv.Atoi(string(raw))
	if err != nil {
		return errInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(rt.tokenAt(usr, day)), []byte(token)) == 0 {
		return errInvalidToken
	}
	if dayNumber(NowFunc())-day > rt.maxDays {
		return errTokenExpired
	}
	return nil
}

func (rt resetTokens) tokenAt(usr User, day int) string {
	mac := hmac.New(sha256.New, rt.key)
	mac.Write([]byte(usr.ID))
	mac.Write(usr.PasswordHash)
	mac.Write([]byte(usr.UpdatedAt.UTC().Format(time.RFC3339Nano)))
	mac.Write([]byte(strconv.Itoa(day)))
	return dayEncoding.EncodeToString([]byte(strconv.Itoa(day))) + "-" + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// dayNumber counts the days elapsed since 2001-01-01, rounding up.
func dayNumber(t time.Time) int {
	d := t.Sub(epoch)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
