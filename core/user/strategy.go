package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
)

// Strategy names
const (
	StrategyAccount     = "account"
	StrategyStudentCode = "student-code"
)

// ErrNoMatch tells the Authenticator to try the next strategy.
var ErrNoMatch = errors.New("no match")

// AuthError is returned when no strategy accepted the credentials.
// Its message never says which strategy failed; Attempted is for audit logs only.
type AuthError struct {
	Attempted []string
}

func (err AuthError) Error() string {
	return "account or password incorrect"
}

func IsAuthError(err error) bool {
	switch errors.Cause(err).(type) {
	case *AuthError, AuthError:
		return true
	}
	return false
}

type Strategy interface {
	Name() string
	// Authenticate returns ErrNoMatch when the credentials do not resolve a User.
	// Any other error stops the chain.
	Authenticate(ctx context.Context, identifier, credential string) (User, error)
}

// Authenticator tries its strategies in order, first success wins.
type Authenticator struct {
	strategies []Strategy
	logger     core.Logger
}

func NewAuthenticator(logger core.Logger, strategies ...Strategy) *Authenticator {
	return &Authenticator{strategies: strategies, logger: logger}
}

func (a *Authenticator) Authenticate(ctx context.Context, identifier, credential string) (User, error) {
	identifier = core.CleanString(identifier)
	credential = strings.TrimSpace(credential)
	if identifier == "" || credential == "" {
		return User{}, &AuthError{}
	}

	attempted := make([]string, 0, len(a.strategies))
	for _, s := range a.strategies {
		attempted = append(attempted, s.Name())
		usr, err := s.Authenticate(ctx, identifier, credential)
		if err == nil {
			return usr, nil
		}
		if errors.Cause(err) != ErrNoMatch {
			return User{}, errors.Wrapf(err, "%s strategy", s.Name())
		}
	}

	a.logger.Info(
		fmt.Sprintf("login failed for %q", identifier),
		map[string]interface{}{"strategies": attempted},
	)
	return User{}, &AuthError{Attempted: attempted}
}

// AccountStrategy matches (email, password) against the users table.
type AccountStrategy struct {
	tables core.TableService
	logger core.Logger
}

var _ Strategy = (*AccountStrategy)(nil)

func NewAccountStrategy(tables core.TableService, logger core.Logger) *AccountStrategy {
	return &AccountStrategy{tables: tables, logger: logger}
}

func (s *AccountStrategy) Name() string { return StrategyAccount }

func (s *AccountStrategy) Authenticate(ctx context.Context, email, password string) (User, error) {
	row, err := s.tables.SelectOne(ctx, core.From(core.TableUsers).
		Where("email", email).
		Where("password", password))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrNoMatch
		}
		return User{}, errors.Wrap(err, "looking up account")
	}

	usr := User{
		ID:    row.String("id"),
		Email: row.String("email"),
		Name:  row.String("name"),
		Role:  row.String("role"),
	}

	// the login itself does not depend on the stamp
	stamp := core.Row{"last_login": core.NowFunc().UTC().Format(time.RFC3339Nano)}
	if err = s.tables.Update(ctx, core.TableUsers, stamp, core.Eq("id", row["id"])); err != nil {
		s.logger.Warn(fmt.Sprintf("stamping last login of %q: %v", usr.Email, err), err)
	}

	if usr.Role == RoleStudent {
		student, err := s.tables.SelectOne(ctx, core.From(core.TableStudents).
			Select("id").
			Where("email", usr.Email))
		switch {
		case err == nil:
			usr.ID = student.String("id")
		case core.IsNotFound(err):
			usr.ID = UnknownStudentID
		default:
			return User{}, errors.Wrap(err, "resolving student code")
		}
	}
	return usr, nil
}

// StudentCodeStrategy treats the identifier as a student code and the credential as the date of birth.
// Both the ISO date (YYYY-MM-DD) and the raw stored value are accepted.
type StudentCodeStrategy struct {
	tables core.TableService
}

var _ Strategy = (*StudentCodeStrategy)(nil)

func NewStudentCodeStrategy(tables core.TableService) *StudentCodeStrategy {
	return &StudentCodeStrategy{tables: tables}
}

func (s *StudentCodeStrategy) Name() string { return StrategyStudentCode }

func (s *StudentCodeStrategy) Authenticate(ctx context.Context, code, dob string) (User, error) {
	row, err := s.tables.SelectOne(ctx, core.From(core.TableStudents).Where("id", code))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrNoMatch
		}
		return User{}, errors.Wrap(err, "looking up student")
	}

	raw := row.String("date_of_birth")
	if raw == "" {
		return User{}, ErrNoMatch
	}
	if dob != core.ISODate(raw) && dob != raw {
		return User{}, ErrNoMatch
	}
	return User{
		ID:    row.String("id"),
		Email: row.String("email"),
		Name:  row.String("full_name"),
		Role:  RoleStudent,
	}, nil
}
