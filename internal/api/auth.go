package api

import "context"

// Login authenticates with mail+password and returns the session credential.
func (c *Client) Login(ctx context.Context, mail, password string) (*AuthResponse, error) {
	var out AuthResponse
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"mail": mail, "password": password}).
		SetResult(&out).
		Post("/login")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account and returns the session credential.
func (c *Client) Signup(ctx context.Context, mail, username, password, dateOfBirth string) (*AuthResponse, error) {
	var out AuthResponse
	_, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"mail":          mail,
			"username":      username,
			"password":      password,
			"date_of_birth": dateOfBirth,
		}).
		SetResult(&out).
		Post("/signup")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchMe returns the authenticated user's account record.
func (c *Client) FetchMe(ctx context.Context) (*Me, error) {
	var out Me
	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/me")
	if err != nil {
		return nil, err
	}
	return &out, nil
}
