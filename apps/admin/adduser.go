package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core"
	"github.com/joesive47/skillnexus-lms-sub005/core/user"
)

// addUser creates a user.User; existing usernames are left untouched.
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname); err == nil {
		return user.ErrUserExists
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	roles := []string{user.RoleStudent}
	if isAdmin {
		roles = user.AllRoles
	}
	_, err := cli.usrSvc.Create(ctx, user.NewUser{
		Name:            uname,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	return err
}
