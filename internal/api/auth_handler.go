package api

import (
	"net/http"

	"relytailors-be/internal/auth"
	"relytailors-be/internal/user"
)

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var input user.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, r, http.StatusCreated, res)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var input user.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, r, http.StatusOK, res)
}

func (h *handler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
