package securitymanager

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// Users is the user endpoint. System and disabled users are included.
type Users struct {
	*firemon.Endpoint[*User]
}

func newUsers(sm *SecurityManager) *Users {
	return &Users{
		Endpoint: firemon.NewEndpoint(sm.Client(), sm.DomainURL()+"/user",
			func(o *firemon.Object) *User { return &User{Object: o} },
			firemon.EndpointParams(url.Values{
				"includeSystem":   {"true"},
				"includeDisabled": {"true"},
			}),
		),
	}
}

// GetByName returns the user with exactly this username.
func (u *Users) GetByName(ctx context.Context, username string) (*User, error) {
	all, err := u.All(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*User
	for _, user := range all {
		if user.Username() == username {
			matches = append(matches, user)
		}
	}
	return firemon.ExactlyOne(matches, "username "+username)
}

// Lookup resolves key as a user id when it is numeric and as a username
// otherwise.
func (u *Users) Lookup(ctx context.Context, key string) (*User, error) {
	if id, err := strconv.Atoi(key); err == nil {
		return u.Get(ctx, id)
	}
	return u.GetByName(ctx, key)
}

// Template returns the body of a local user create request.
func (u *Users) Template() firemon.Record {
	return firemon.Record{
		"username":         nil,
		"firstName":        nil,
		"lastName":         nil,
		"email":            nil,
		"password":         nil,
		"existingPassword": nil,
		"passwordExpired":  false,
		"locked":           false,
		"expired":          false,
		"enabled":          true,
		"authType":         "LOCAL",
		"authServerId":     nil,
	}
}

// User is a FireMon user.
type User struct {
	*firemon.Object
}

// Username returns the login name.
func (u *User) Username() string { return u.Data().Str("username") }

func (u *User) String() string { return u.Username() }

// SetPassword changes the user password.
func (u *User) SetPassword(ctx context.Context, password string) error {
	_, err := u.Request("password",
		firemon.WithHeader("Suppress-Auth-Header", "true"),
	).Put(ctx, firemon.FormBody(url.Values{"password": {password}}))
	if err != nil {
		return fmt.Errorf("failed to set password for %s: %w", u.Username(), err)
	}
	return nil
}

// UserGroups is the user group endpoint.
type UserGroups struct {
	*firemon.Endpoint[*UserGroup]
}

func newUserGroups(sm *SecurityManager) *UserGroups {
	return &UserGroups{
		Endpoint: firemon.NewEndpoint(sm.Client(), sm.DomainURL()+"/usergroup",
			func(o *firemon.Object) *UserGroup { return &UserGroup{Object: o} },
			firemon.EndpointParams(url.Values{"includeMapping": {"true"}}),
		),
	}
}

// UserGroup is a group of users sharing permissions.
type UserGroup struct {
	*firemon.Object
}

// Permissions returns the permissions granted to the group.
func (g *UserGroup) Permissions(ctx context.Context) ([]firemon.Record, error) {
	return g.Request("permissions").List(ctx, nil)
}

// SetPermission grants a permission. See
// SecurityManager.PermissionDefinitions for the ids.
func (g *UserGroup) SetPermission(ctx context.Context, id int) error {
	_, err := g.Request("permission/" + strconv.Itoa(id)).Post(ctx, nil)
	return err
}

// UnsetPermission revokes a permission.
func (g *UserGroup) UnsetPermission(ctx context.Context, id int) error {
	return g.Request("permission/" + strconv.Itoa(id)).Delete(ctx)
}
