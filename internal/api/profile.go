package api

import "context"

// MyProfile returns the caller's own profile with sharing settings.
func (c *Client) MyProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me/profile")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the caller's profile fields and sharing settings.
func (c *Client) UpdateProfile(ctx context.Context, p *Profile) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(p).
		Post("/me/update_profile")
	return err
}

// ChangeUsername updates the account username.
func (c *Client) ChangeUsername(ctx context.Context, username string) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"new_username": username}).
		Post("/me/change_username")
	return err
}

// ChangeMail updates the account mail address.
func (c *Client) ChangeMail(ctx context.Context, mail string) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"new_mail": mail}).
		Post("/me/change_mail")
	return err
}

// ChangeDateOfBirth updates the account date of birth (YYYY-MM-DD).
func (c *Client) ChangeDateOfBirth(ctx context.Context, dateOfBirth string) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"new_date_of_birth": dateOfBirth}).
		Post("/me/change_date_of_birth")
	return err
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"old_password": oldPassword, "new_password": newPassword}).
		Post("/me/change_password")
	return err
}
