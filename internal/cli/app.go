// Package cli implements the administrative command line of the accounts
// service: creating regular users and superusers directly in the store.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/flagx"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

const (
	CmdCreateSuperuser = "createsuperuser"
	CmdCreateUser      = "createuser"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrBlankPassword    = errors.New("blank passwords are not allowed; use -no-password for an account without one")
)

// UserCreator is the part of the user service the commands need.
type UserCreator interface {
	CreateUser(ctx context.Context, email, password string, fields models.UserFields) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password string, fields models.UserFields) (*models.User, error)
}

type App struct {
	users  UserCreator
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(users UserCreator, in io.Reader, out io.Writer) *App {
	return &App{users: users, reader: bufio.NewReader(in), out: out}
}

type createOptions struct {
	email      string
	firstName  string
	lastName   string
	noPassword bool
}

// Run executes the command found in args. Server configuration flags may
// appear anywhere in args and are ignored here.
func (a *App) Run(ctx context.Context, args []string) error {
	i := slices.IndexFunc(args, func(s string) bool {
		return s == CmdCreateSuperuser || s == CmdCreateUser
	})
	if i < 0 {
		a.usage()
		return ErrUnknownCommand
	}
	cmd := args[i]

	opts, err := parseCreateFlags(cmd, args[i+1:])
	if err != nil {
		return err
	}

	user, err := a.create(ctx, cmd == CmdCreateSuperuser, opts)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return fmt.Errorf("that email is already taken: %w", err)
		}
		return err
	}

	kind := "User"
	if user.IsSuperuser {
		kind = "Superuser"
	}
	fmt.Fprintf(a.out, "%s %s created (id %s).\n", kind, user.Email, user.ID)
	return nil
}

func parseCreateFlags(cmd string, args []string) (createOptions, error) {
	var opts createOptions

	args = flagx.FilterArgs(args, []string{"-email", "-first-name", "-last-name"}, "-no-password")

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&opts.email, "email", "", "email of the new account")
	fs.StringVar(&opts.firstName, "first-name", "", "first name")
	fs.StringVar(&opts.lastName, "last-name", "", "last name")
	fs.BoolVar(&opts.noPassword, "no-password", false, "create the account with an unusable password")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func (a *App) create(ctx context.Context, superuser bool, opts createOptions) (*models.User, error) {
	email := opts.email
	if email == "" {
		var err error
		if email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
			return nil, err
		}
	}

	var password []byte
	if !opts.noPassword {
		var err error
		if password, err = a.promptPassword(); err != nil {
			return nil, err
		}
		defer common.WipeByteArray(password)
	}

	fields := models.UserFields{FirstName: opts.firstName, LastName: opts.lastName}
	if superuser {
		return a.users.CreateSuperuser(ctx, email, string(password), fields)
	}
	return a.users.CreateUser(ctx, email, string(password), fields)
}

func (a *App) promptPassword() ([]byte, error) {
	pw, err := GetPassword(a.out, "Password")
	if err != nil {
		return nil, err
	}
	again, err := GetPassword(a.out, "Password (again)")
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		common.WipeByteArray(pw)
		return nil, ErrPasswordMismatch
	}
	if len(pw) == 0 {
		return nil, ErrBlankPassword
	}
	return pw, nil
}

func (a *App) usage() {
	fmt.Fprintf(a.out, `usage: cli [server flags] <command> [options]

commands:
  %s  -email E [-first-name F] [-last-name L] [-no-password]
  %s       -email E [-first-name F] [-last-name L] [-no-password]
`, CmdCreateSuperuser, CmdCreateUser)
}
