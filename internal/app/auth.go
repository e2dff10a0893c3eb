package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

var errBadCredentials = errors.New("bad credentials")

// Login opens a session for a moviegoer. Bookings are created on behalf of
// the session's user, so every order starts here.
func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	if app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String()) != 0 {
		err := app.writeJSON(w, http.StatusOK, api.AlreadyLoggedInResponse{Message: "You are already logged in"}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	var input api.LoginRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.authenticate(r.Context(), input)
	switch {
	case errors.Is(err, errBadCredentials):
		app.contextGetLogger(r).Warn("login rejected", "reason", err.Error())
		app.invalidCredentialsResponse(w, r)
		return
	case err != nil:
		app.serverErrorResponse(w, r, err)
		return
	}

	// new token on privilege change against session fixation
	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeyUserId.String(), user.ID)
	app.contextGetLogger(r).Info("user logged in", "user_id", user.ID)

	w.WriteHeader(http.StatusNoContent)
}

// authenticate resolves the user behind a login request. Every way the
// credentials can be wrong is reported as errBadCredentials.
func (app *Application) authenticate(ctx context.Context, input api.LoginRequest) (*domain.User, error) {
	if err := app.validator.Struct(input); err != nil {
		return nil, errors.Join(errBadCredentials, errors.New("malformed input"))
	}

	user, err := app.userRepo.GetByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return nil, errors.Join(errBadCredentials, errors.New("unknown email"))
	case err != nil:
		return nil, err
	}

	match, err := user.Password.Matches(input.Password)
	if err != nil {
		return nil, err
	}

	if !match {
		return nil, errors.Join(errBadCredentials, errors.New("wrong password"))
	}

	return user, nil
}

func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
	if userId == 0 {
		app.notFoundResponse(w, r)
		return
	}

	err := app.sessionManager.Destroy(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("user logged out", "user_id", userId)

	w.WriteHeader(http.StatusNoContent)
}
