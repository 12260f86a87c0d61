package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a bearer token. Invalid credentials fail
// with a 401 carrying the server's message.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	payload := map[string]string{"email": email, "password": password}
	var token Token
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, payload, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Signup registers a new account and returns its token. Field problems fail
// with a 422 whose first validation detail becomes the message.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Token, error) {
	var token Token
	if err := c.do(ctx, http.MethodPost, "/users/", nil, req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, patch UserUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetSubjects(ctx context.Context) ([]Subject, error) {
	var subjects []Subject
	if err := c.do(ctx, http.MethodGet, "/subjects/", nil, nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (c *Client) GetSubject(ctx context.Context, id int64) (*Subject, error) {
	var subject Subject
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/subjects/%d", id), nil, nil, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}
