package user

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
)

var (
	ErrEmailExists     = errors.New("an account with this email already exists")
	ErrAccountNotFound = errors.New("account not found")
)

type (
	// SessionStore keeps sessions between requests. GetSession fails with core.ErrNotFound for unknown ids.
	SessionStore interface {
		SaveSession(ctx context.Context, sess Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Authenticate(ctx context.Context, identifier, credential string) (User, error)
		Login(ctx context.Context, identifier, credential string) (Session, error)
		Logout(ctx context.Context, sessionID string) error
		GetSession(ctx context.Context, sessionID string) (Session, error)
		CreateAccount(ctx context.Context, na NewAccount) (User, error)
		ResetPassword(ctx context.Context, email, password string) error
	}

	Service struct {
		tables   core.TableService
		sessions SessionStore
		auth     *Authenticator
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

// NewService returns a Service authenticating with the account strategy, then the student code one.
func NewService(
	tables core.TableService,
	sessions SessionStore,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		tables:   tables,
		sessions: sessions,
		validate: validate,
		logger:   logger,
		auth: NewAuthenticator(
			logger,
			NewAccountStrategy(tables, logger),
			NewStudentCodeStrategy(tables),
		),
	}
}

func (svc *Service) Authenticate(ctx context.Context, identifier, credential string) (User, error) {
	return svc.auth.Authenticate(ctx, identifier, credential)
}

// Login authenticates then opens a new Session.
func (svc *Service) Login(ctx context.Context, identifier, credential string) (Session, error) {
	usr, err := svc.Authenticate(ctx, identifier, credential)
	if err != nil {
		if !IsAuthError(err) {
			svc.logger.Error(fmt.Sprintf("login: %v", err), err)
		}
		return Session{}, err
	}

	sess := Session{
		ID:        uuid.NewString(),
		User:      usr,
		CreatedAt: core.NowFunc().UTC(),
	}
	if err = svc.sessions.SaveSession(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return sess, nil
}

func (svc *Service) Logout(ctx context.Context, sessionID string) error {
	if err := svc.sessions.DeleteSession(ctx, sessionID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

func (svc *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, core.ErrNotFound
	}
	return svc.sessions.GetSession(ctx, sessionID)
}

func (svc *Service) CreateAccount(ctx context.Context, na NewAccount) (User, error) {
	if err := na.Validate(svc.validate); err != nil {
		return User{}, err
	}

	_, err := svc.tables.SelectOne(ctx, core.From(core.TableUsers).Select("id").Where("email", na.Email))
	if err == nil {
		return User{}, core.NewValidationError(
			ErrEmailExists,
			core.FieldError{Field: "email", Error: ErrEmailExists.Error()},
		)
	} else if !core.IsNotFound(err) {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	usr := User{
		ID:    uuid.NewString(),
		Email: na.Email,
		Name:  na.Name,
		Role:  na.Role,
	}
	row := core.Row{
		"id":       usr.ID,
		"email":    usr.Email,
		"name":     usr.Name,
		"role":     usr.Role,
		"password": na.Password,
	}
	if err = svc.tables.Insert(ctx, core.TableUsers, row); err != nil {
		return User{}, errors.Wrap(err, "inserting account")
	}
	return usr, nil
}

func (svc *Service) ResetPassword(ctx context.Context, email, password string) error {
	email = core.CleanString(email)
	if email == "" || password == "" {
		return core.NewValidationError(errors.New("email and password are required"))
	}

	_, err := svc.tables.SelectOne(ctx, core.From(core.TableUsers).Select("id").Where("email", email))
	if err != nil {
		if core.IsNotFound(err) {
			return ErrAccountNotFound
		}
		return errors.Wrap(err, "looking up account")
	}

	if err = svc.tables.Update(ctx, core.TableUsers, core.Row{"password": password}, core.Eq("email", email)); err != nil {
		return errors.Wrap(err, "updating password")
	}
	return nil
}
