package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Collaborators holds the outbound endpoints the built-in tools call.
type Collaborators struct {
	// WeatherURL answers GET ?city=<name> with {"temp": "..."}.
	WeatherURL string
	// UsersURL answers GET ?city=<name> with an array of user records, and
	// GET /delete?email=&token= with a deletion result.
	UsersURL string
	// DeleteToken is the shared secret forwarded on deletion calls.
	DeleteToken string
}

// RegisterBuiltins registers the three relay tools: weather by city, user
// lookup by city, and user deletion by email.
func RegisterBuiltins(r *Registry, c Collaborators) error {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")

	weather := Descriptor{
		Name:        "getWeatherData",
		Description: "Get the current weather for a city",
		Params: []Param{
			{Name: "city", Type: "string", Description: "Name of the city", Required: true},
		},
	}
	if err := r.Register(weather, func(ctx context.Context, args map[string]any) (any, error) {
		city, _ := args["city"].(string)
		resp, err := client.R().
			SetContext(ctx).
			SetQueryParam("city", city).
			Get(c.WeatherURL)
		return forward(resp, err)
	}); err != nil {
		return err
	}

	users := Descriptor{
		Name:        "getUsersData",
		Description: "List registered users living in a city",
		Params: []Param{
			{Name: "city", Type: "string", Description: "Name of the city", Required: true},
		},
	}
	if err := r.Register(users, func(ctx context.Context, args map[string]any) (any, error) {
		city, _ := args["city"].(string)
		resp, err := client.R().
			SetContext(ctx).
			SetQueryParam("city", city).
			Get(c.UsersURL)
		return forward(resp, err)
	}); err != nil {
		return err
	}

	// The misspelled name is part of the wire contract with existing prompts
	// and clients; do not correct it.
	deleteUser := Descriptor{
		Name:        "deleteUserlData",
		Description: "Delete a registered user account by email address",
		Params: []Param{
			{Name: "email", Type: "string", Description: "Email address of the user to delete", Required: true},
		},
	}
	if err := r.Register(deleteUser, func(ctx context.Context, args map[string]any) (any, error) {
		email, _ := args["email"].(string)
		resp, err := client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"email": email,
				"token": c.DeleteToken,
			}).
			Get(c.UsersURL + "/delete")
		return forward(resp, err)
	}); err != nil {
		return err
	}

	return nil
}

// forward returns the collaborator's response payload unmodified: decoded JSON
// when the body is JSON, the raw text otherwise.
func forward(resp *resty.Response, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("collaborator returned %s: %s", resp.Status(), resp.String())
	}
	var payload any
	if unmarshalErr := json.Unmarshal(resp.Body(), &payload); unmarshalErr != nil {
		return resp.String(), nil
	}
	return payload, nil
}
