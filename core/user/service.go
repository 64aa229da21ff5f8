package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
)

var (
	// errors
	ErrNotFound               = errors.New("user not found")
	ErrEmailExists            = errors.New("user already exists")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInstructorCodeRequired = errors.New("instructor security code is required")
	ErrInvalidInstructorCode  = errors.New("invalid instructor code")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrIncorrectPassword      = errors.New("incorrect current password")
	ErrInvalidResetToken      = errors.New("invalid or expired password reset token")
	ErrWeakPassword           = errors.New(pwdMinLenText)
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// GetUsersByID silently skips unknown IDs.
		GetUsersByID(ctx context.Context, ids ...string) ([]User, error)
		// QueryUsers applies AND operation on the set QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	SecurityCodeRepository interface {
		CountSecurityCodes(ctx context.Context) (int, error)
		CreateSecurityCodes(ctx context.Context, codes ...SecurityCode) error
		SecurityCodeExists(ctx context.Context, code string) (bool, error)
	}

	// TokenIssuer issues the identity tokens returned in a Session.
	TokenIssuer interface {
		Issue(userID string) (string, error)
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (Session, error)
		Login(ctx context.Context, cred LoginCredentials) (Session, error)
		RequestPasswordReset(ctx context.Context, fp ForgotPassword) error
		CheckResetToken(ctx context.Context, email, token string) error
		ResetPassword(ctx context.Context, rp ResetPassword) error
		SetPassword(ctx context.Context, email, pwd string) error
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByIDs(ctx context.Context, ids ...string) ([]User, error)
		Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		SeedSecurityCodes(ctx context.Context, codes []string) (bool, error)
		AddSecurityCode(ctx context.Context, code string) error
	}

	service struct {
		repo     Repository
		codeRepo SecurityCodeRepository
		tokens   TokenIssuer
		mailSvc  core.EmailService
		validate *validator.Validate
		resets   resetTokens
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	codeRepo SecurityCodeRepository,
	tokens TokenIssuer,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) Service {
	return &service{
		repo:     repo,
		codeRepo: codeRepo,
		tokens:   tokens,
		mailSvc:  mailSvc,
		validate: validate,
		resets:   newResetTokens(conf.SecretKey, conf.PasswordResetTimeoutDelta),
	}
}

func (svc *service) newSession(usr User) (Session, error) {
	tkn, err := svc.tokens.Issue(usr.ID)
	if err != nil {
		return Session{}, errors.Wrap(err, "issuing token")
	}
	return Session{Public: usr.Public(), Token: tkn}, nil
}

// Register creates a Trainee, or an Instructor holding a valid security code, and logs them in.
func (svc *service) Register(ctx context.Context, nu NewUser) (Session, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return Session{}, err
	}

	role, err := ParseRole(nu.Role)
	if err != nil {
		return Session{}, core.NewFieldValidationError(err, "role")
	}
	switch role {
	case RoleInstructor:
		if nu.InstructorCode == "" {
			return Session{}, core.NewFieldValidationError(ErrInstructorCodeRequired, "instructorCode")
		}
		ok, err := svc.codeRepo.SecurityCodeExists(ctx, nu.InstructorCode)
		if err != nil {
			return Session{}, errors.Wrap(err, "checking instructor code")
		}
		if !ok {
			return Session{}, ErrInvalidInstructorCode
		}
	case RoleTrainee:
		// no gate
	}

	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return Session{}, core.NewFieldValidationError(ErrEmailExists, "email")
	} else if errors.Cause(err) != ErrNotFound {
		return Session{}, errors.Wrap(err, "checking email uniqueness")
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return Session{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists { // lost a race with a concurrent registration
			return Session{}, core.NewFieldValidationError(ErrEmailExists, "email")
		}
		return Session{}, errors.Wrap(err, "creating user")
	}
	return svc.newSession(usr)
}

func (svc *service) Login(ctx context.Context, cred LoginCredentials) (Session, error) {
	cred.Email = core.CleanString(cred.Email)
	if err := svc.validate.Struct(cred); err != nil {
		return Session{}, err
	}

	usr, err := svc.repo.GetUserByEmail(ctx, cred.Email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Session{}, ErrNotFound
		}
		return Session{}, errors.Wrap(err, "finding user by email")
	}
	if err := usr.CheckPassword(cred.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return svc.newSession(usr)
}

type passwordResetData struct {
	Name      string
	Email     string
	Token     string
	ValidDays int
}

// RequestPasswordReset mails a password reset token to the user.
func (svc *service) RequestPasswordReset(ctx context.Context, fp ForgotPassword) error {
	fp.Email = core.CleanString(fp.Email)
	if err := svc.validate.Struct(fp); err != nil {
		return err
	}

	usr, err := svc.GetByEmail(ctx, fp.Email)
	if err != nil {
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: passwordResetData{
			Name:      usr.Name,
			Email:     usr.Email,
			Token:     svc.resets.make(usr),
			ValidDays: svc.resets.ValidDays(),
		},
	})
	return nil
}

// CheckResetToken reports whether token was issued for email and is still valid.
func (svc *service) CheckResetToken(ctx context.Context, email, token string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := svc.resets.check(usr, token); err != nil {
		return ErrInvalidResetToken
	}
	return nil
}

// ResetPassword replaces the password of a user who proves knowledge of the current one.
func (svc *service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	rp.Email = core.CleanString(rp.Email)
	if err := svc.validate.Struct(rp); err != nil {
		return err
	}

	usr, err := svc.GetByEmail(ctx, rp.Email)
	if err != nil {
		return err
	}
	if err := usr.CheckPassword(rp.CurrentPassword); err != nil {
		return ErrIncorrectPassword
	}
	return svc.updatePassword(ctx, usr, rp.NewPassword)
}

// SetPassword overrides the password of the user with email, without knowledge of the current one.
func (svc *service) SetPassword(ctx context.Context, email, pwd string) error {
	if !validPassword(pwd) {
		return ErrWeakPassword
	}
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return svc.updatePassword(ctx, usr, pwd)
}

func (svc *service) updatePassword(ctx context.Context, usr User, pwd string) error {
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, errors.Cause(err)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email))
	if err != nil && errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding user by email")
	}
	return usr, errors.Cause(err)
}

func (svc *service) GetByIDs(ctx context.Context, ids ...string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := svc.repo.GetUsersByID(ctx, ids...)
	return users, errors.Wrap(err, "finding users by ID")
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, core.NewFieldValidationError(ErrInvalidRole, "role")
	}
	users, err := svc.repo.QueryUsers(ctx, filter, ordering...)
	return users, errors.Wrap(err, "querying users")
}

// SeedSecurityCodes stores codes only when no security code exists yet.
func (svc *service) SeedSecurityCodes(ctx context.Context, codes []string) (bool, error) {
	count, err := svc.codeRepo.CountSecurityCodes(ctx)
	if err != nil {
		return false, errors.Wrap(err, "counting security codes")
	}
	if count > 0 {
		return false, nil
	}

	scs := make([]SecurityCode, 0, len(codes))
	for _, c := range codes {
		if c = core.CleanString(c); c != "" {
			scs = append(scs, SecurityCode{Code: c})
		}
	}
	if len(scs) == 0 {
		return false, nil
	}
	if err := svc.codeRepo.CreateSecurityCodes(ctx, scs...); err != nil {
		return false, errors.Wrap(err, "creating security codes")
	}
	return true, nil
}

// AddSecurityCode stores code; adding an existing code is a no-op.
func (svc *service) AddSecurityCode(ctx context.Context, code string) error {
	code = core.CleanString(code)
	if code == "" {
		return ErrInstructorCodeRequired
	}
	exists, err := svc.codeRepo.SecurityCodeExists(ctx, code)
	if err != nil {
		return errors.Wrap(err, "checking security code")
	}
	if exists {
		return nil
	}
	return errors.Wrap(svc.codeRepo.CreateSecurityCodes(ctx, SecurityCode{Code: code}), "creating security code")
}
